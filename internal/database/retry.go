package database

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	retryInitialInterval = 10 * time.Millisecond
	retryMaxInterval     = 250 * time.Millisecond
)

// Retry runs fn until it succeeds, fails with anything other than ErrConflict, or
// maxTries attempts are spent. fn must be safe to run again from scratch.
func Retry(ctx context.Context, maxTries uint, fn func() error) error {
	if maxTries == 0 {
		maxTries = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := fn(); err != nil {
			if errors.Is(err, ErrConflict) {
				return struct{}{}, err
			}

			return struct{}{}, backoff.Permanent(err)
		}

		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxTries))

	return err
}
