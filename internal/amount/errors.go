package amount

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDigits is returned when the input contains a character outside the radix alphabet.
	ErrInvalidDigits = errors.New("invalid digits")
	// ErrOverflow is returned when the parsed value does not fit in 256 bits.
	ErrOverflow = errors.New("value exceeds 256 bits")
)

// DecodeError reports a failed decode together with the offending input.
type DecodeError struct {
	Kind   error
	Digits string
	Radix  Radix
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q (radix %d): %v", e.Digits, e.Radix, e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}
