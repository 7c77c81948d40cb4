package storage

import (
	"context"

	"swapLogger/internal/model"
)

// Sink receives the rendered results of the pipeline. Records of one block are
// followed by a Flush.
type Sink interface {
	PutSwap(ctx context.Context, record model.SwapRecord) error
	PutError(ctx context.Context, record model.ErrorRecord) error
	Flush(ctx context.Context) error
	Close() error
}
