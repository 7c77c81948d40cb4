package swap

import (
	"fmt"
	"strings"
)

// Perspective selects which side of the pool a direction is read from.
type Perspective string

const (
	// PerspectivePool renders the negative amount first: the token the pool gave up.
	PerspectivePool Perspective = "pool"
	// PerspectiveTrader renders the token the trader paid in first.
	PerspectiveTrader Perspective = "trader"
)

// ParsePerspective validates a perspective name. Empty selects PerspectivePool.
func ParsePerspective(input string) (Perspective, error) {
	switch Perspective(strings.ToLower(strings.TrimSpace(input))) {
	case "", PerspectivePool:
		return PerspectivePool, nil
	case PerspectiveTrader:
		return PerspectiveTrader, nil
	default:
		return "", fmt.Errorf("unknown perspective: %s", input)
	}
}

// Render returns the direction string for o from perspective p.
func (p Perspective) Render(o Outcome) string {
	if p == PerspectiveTrader {
		return o.Direction.Reverse().String()
	}
	return o.Direction.String()
}
