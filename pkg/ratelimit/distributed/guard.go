package distributed

import (
	"context"
	"time"
)

// Exceeded reports whether subject has reached threshold events over window.
// The result is a snapshot and may be stale by the time the caller acts on it.
func (l *Limiter) Exceeded(ctx context.Context, subject string, window time.Duration, threshold int64) (bool, error) {
	count, err := l.Count(ctx, subject, window)
	if err != nil {
		return false, err
	}
	return count >= threshold, nil
}

// WithinBounds is the negation of Exceeded.
func (l *Limiter) WithinBounds(ctx context.Context, subject string, window time.Duration, threshold int64) (bool, error) {
	exceeded, err := l.Exceeded(ctx, subject, window, threshold)
	if err != nil {
		return false, err
	}
	return !exceeded, nil
}
