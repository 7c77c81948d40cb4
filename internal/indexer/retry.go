package indexer

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const maxRetryDelay = 30 * time.Second

// withRetry runs fn once plus up to maxRetries retries with exponential backoff.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	return retry.Do(
		func() error { return fn(ctx) },
		retry.Attempts(uint(maxRetries)+1),
		retry.Delay(baseDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}
