package config

import (
	"errors"
	"fmt"
	"sync"

	gvalidator "github.com/go-playground/validator/v10"
)

var (
	validator         *gvalidator.Validate
	initValidatorOnce sync.Once
)

// ErrValidation is the first error of the chain returned by Validate.
var ErrValidation = errors.New("invalid configuration")

const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

// Validate checks the struct tags of a loaded config.
func Validate(v any) error {
	initValidatorOnce.Do(func() {
		validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
	})

	err := validator.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidation}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat, validationErr.Field(), validationErr.Value(), validationErr.Tag()))
	}
	return errors.Join(errs...)
}
