package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestRetry(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	testCases := []struct {
		name      string
		failures  int
		failWith  error
		maxTries  uint
		wantCalls int
		wantErr   error
	}{
		{
			name:      "success_first_try",
			maxTries:  3,
			wantCalls: 1,
		},
		{
			name:      "conflict_then_success",
			failures:  2,
			failWith:  fmt.Errorf("commit: %w", ErrConflict),
			maxTries:  3,
			wantCalls: 3,
		},
		{
			name:      "conflict_exhausted",
			failures:  10,
			failWith:  ErrConflict,
			maxTries:  3,
			wantCalls: 3,
			wantErr:   ErrConflict,
		},
		{
			name:      "permanent_error",
			failures:  10,
			failWith:  errBoom,
			maxTries:  3,
			wantCalls: 1,
			wantErr:   errBoom,
		},
		{
			name:      "unavailable_is_not_retried",
			failures:  10,
			failWith:  ErrUnavailable,
			maxTries:  5,
			wantCalls: 1,
			wantErr:   ErrUnavailable,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls int
			err := Retry(context.Background(), tc.maxTries, func() error {
				calls++
				if calls <= tc.failures {
					return tc.failWith
				}
				return nil
			})

			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected error %v got %v", tc.wantErr, err)
			}

			if calls != tc.wantCalls {
				t.Errorf("expected %d calls got %d", tc.wantCalls, calls)
			}
		})
	}
}
