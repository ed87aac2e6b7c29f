package database

import (
	"errors"
	"fmt"
	"testing"
)

func TestStoreErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNotFound, ErrConflict, ErrUnavailable, ErrReadOnly}
	for i, target := range sentinels {
		wrapped := fmt.Errorf("update room #stream: %w", fmt.Errorf("commit: %w", target))
		for j, other := range sentinels {
			if got := errors.Is(wrapped, other); got != (i == j) {
				t.Errorf("errors.Is(%v, %v) = %t", wrapped, other, got)
			}
		}
	}
}
