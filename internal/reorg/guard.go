// Package reorg tracks recently observed blocks and stops processing when decode
// failures persist across too many consecutive blocks.
//
// The guard only sees symptoms: it does not compare hashes against a parent chain,
// so a deep reorg that decodes cleanly passes unnoticed.
package reorg

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// ErrDepthExceeded is returned once the run of failing blocks reaches the configured depth.
var ErrDepthExceeded = errors.New("reorg depth exceeded")

// DepthError describes the block at which the guard gave up.
type DepthError struct {
	Depth int
	Block string
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%v: %d consecutive failing blocks, last %s", ErrDepthExceeded, e.Depth, e.Block)
}

func (e *DepthError) Unwrap() error {
	return ErrDepthExceeded
}

// Guard is owned by a single consumer and must be called once per block, in block order.
type Guard[K comparable] struct {
	maxDepth int
	window   *lru.Cache
	failures int
}

// NewGuard builds a guard that fails after maxDepth consecutive failing blocks and
// remembers the last maxDepth block ids.
func NewGuard[K comparable](maxDepth int) (*Guard[K], error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("max reorg depth must be greater than zero")
	}
	window, err := lru.New(maxDepth)
	if err != nil {
		return nil, fmt.Errorf("create block window: %w", err)
	}
	return &Guard[K]{maxDepth: maxDepth, window: window}, nil
}

// Observe records the outcome of one processed block.
//
// A clean block resets the failure run. A failing block extends it unless the same
// id is still in the window, in which case it is a redelivery and leaves the run as is.
func (g *Guard[K]) Observe(id K, hadFailure bool) error {
	seen, _ := g.window.ContainsOrAdd(id, struct{}{})
	if seen {
		// refresh recency
		g.window.Get(id)
	}

	switch {
	case !hadFailure:
		g.failures = 0
	case seen:
	default:
		g.failures++
	}

	if g.failures >= g.maxDepth {
		return &DepthError{Depth: g.failures, Block: fmt.Sprint(id)}
	}
	return nil
}

// ConsecutiveFailures returns the current run of failing blocks.
func (g *Guard[K]) ConsecutiveFailures() int {
	return g.failures
}

// MaxDepth returns the configured depth.
func (g *Guard[K]) MaxDepth() int {
	return g.maxDepth
}

// Seen reports whether id is still in the window.
func (g *Guard[K]) Seen(id K) bool {
	return g.window.Contains(id)
}

// Window returns the remembered ids, oldest first.
func (g *Guard[K]) Window() []K {
	keys := g.window.Keys()
	out := make([]K, 0, len(keys))
	for _, key := range keys {
		if id, ok := key.(K); ok {
			out = append(out, id)
		}
	}
	return out
}
