package services

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

const (
	retryBase     = 50 * time.Millisecond
	retryAttempts = 3
)

func newBackoff() retry.Backoff {
	return retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase))
}

// withRetry retries fn while it fails with an unavailable error. Every other
// error, including permission and validation errors, is returned at once.
func withRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := retry.Do(ctx, newBackoff(), func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			if domain.IsUnavailable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func doRetry(ctx context.Context, fn func(context.Context) error) error {
	_, err := withRetry(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
