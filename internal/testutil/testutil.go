package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// TestTimeout is the default timeout for tests
const TestTimeout = 5 * time.Second

// WithTimeout creates a context with the default test timeout
func WithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), TestTimeout)
}

// AdvancingWait returns a wait function that moves clock forward by the
// requested duration instead of sleeping, so polling loops run instantly.
// Each call is counted in calls when it is non-nil.
func AdvancingWait(clock *MockClock, calls *int64) func(ctx context.Context, d time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if calls != nil {
			atomic.AddInt64(calls, 1)
		}
		clock.Advance(d)
		return nil
	}
}
