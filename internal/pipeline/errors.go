package pipeline

import (
	"errors"

	"swapLogger/internal/amount"
	"swapLogger/internal/swap"
)

// ErrMalformedLog marks an event the upstream ABI decoder could not parse.
var ErrMalformedLog = errors.New("malformed log")

// Error kinds written to error records.
const (
	KindInvalidDigits      = "invalid_digits"
	KindOverflow           = "overflow"
	KindAmbiguousDirection = "ambiguous_direction"
	KindMalformedLog       = "malformed_log"
	KindUnknown            = "unknown"
)

// Kind maps a per-event error to its record kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, amount.ErrInvalidDigits):
		return KindInvalidDigits
	case errors.Is(err, amount.ErrOverflow):
		return KindOverflow
	case errors.Is(err, swap.ErrAmbiguousDirection):
		return KindAmbiguousDirection
	case errors.Is(err, ErrMalformedLog):
		return KindMalformedLog
	default:
		return KindUnknown
	}
}
