package swap

import (
	"errors"
	"fmt"

	"swapLogger/internal/amount"
	"swapLogger/internal/model"
)

// ErrAmbiguousDirection is returned when both amounts, or neither, are negative.
var ErrAmbiguousDirection = errors.New("ambiguous swap direction")

// ClassifyError carries the two amounts that could not be classified.
type ClassifyError struct {
	Amount0 string
	Amount1 string
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("%v: amount0=%s amount1=%s", ErrAmbiguousDirection, e.Amount0, e.Amount1)
}

func (e *ClassifyError) Unwrap() error {
	return ErrAmbiguousDirection
}

// Direction is the ordered token pair of a swap.
type Direction struct {
	Given    model.TokenMeta
	Received model.TokenMeta
}

func (d Direction) String() string {
	return d.Given.Label() + " -> " + d.Received.Label()
}

// Reverse swaps the two sides.
func (d Direction) Reverse() Direction {
	return Direction{Given: d.Received, Received: d.Given}
}

// Outcome is a classified swap.
type Outcome struct {
	Given     amount.Decoded
	Received  amount.Decoded
	Direction Direction
}

// Classify picks the negative amount as the given side and the other as the
// received side. labelA belongs to a, labelB to b.
func Classify(a, b amount.Decoded, labelA, labelB model.TokenMeta) (Outcome, error) {
	switch {
	case a.Negative() && !b.Negative():
		return Outcome{
			Given:     a,
			Received:  b,
			Direction: Direction{Given: labelA, Received: labelB},
		}, nil
	case b.Negative() && !a.Negative():
		return Outcome{
			Given:     b,
			Received:  a,
			Direction: Direction{Given: labelB, Received: labelA},
		}, nil
	default:
		return Outcome{}, &ClassifyError{Amount0: a.String(), Amount1: b.String()}
	}
}
