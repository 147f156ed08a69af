package invalidate

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	connectInitialInterval = 250 * time.Millisecond
	connectMaxInterval     = 2 * time.Second
	connectMaxElapsed      = 10 * time.Second
)

// connectWithRetry retries fn with exponential backoff while a transport is
// being dialled at startup.
func connectWithRetry(ctx context.Context, maxElapsed time.Duration, fn func() error) error {
	if maxElapsed <= 0 {
		maxElapsed = connectMaxElapsed
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = connectInitialInterval
	exp.MaxInterval = connectMaxInterval
	exp.Reset()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, fn()
	}, backoff.WithBackOff(exp), backoff.WithMaxElapsedTime(maxElapsed))
	return err
}
