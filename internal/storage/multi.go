package storage

import (
	"context"
	"errors"

	"swapLogger/internal/model"
)

// MultiSink forwards every call to each sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) PutSwap(ctx context.Context, record model.SwapRecord) error {
	for _, sink := range m {
		if err := sink.PutSwap(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) PutError(ctx context.Context, record model.ErrorRecord) error {
	for _, sink := range m {
		if err := sink.PutError(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Flush(ctx context.Context) error {
	for _, sink := range m {
		if err := sink.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, sink := range m {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
