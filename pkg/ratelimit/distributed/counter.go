package distributed

import (
	"context"
	"time"

	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
	"github.com/vnykmshr/ringlimit/pkg/common/validation"
)

// Add records n events for subject in the current bucket.
//
// In one atomic store write it increments the current bucket, clears the two
// buckets ahead of it (they hold data from roughly one span ago) and resets
// the record expiry. It returns the current bucket's new value, not the
// window total.
func (l *Limiter) Add(ctx context.Context, subject string, n int64) (int64, error) {
	if err := validation.ValidatePositive(module, "count", n); err != nil {
		return 0, err
	}

	idx := l.ring.Index(l.config.Clock.Now())

	value, err := l.config.Store.Apply(ctx, l.subjectKey(subject), Mutation{
		Field:  bucketField(idx),
		Delta:  n,
		Delete: bucketFields(l.ring.Ahead(idx)),
		TTL:    l.config.Expiry,
	})
	if err != nil {
		return 0, rlerrors.NewOperationError(module, "add", err).WithContext("subject=" + subject)
	}
	return value, nil
}

// Count returns the number of events recorded for subject over the trailing
// window. The window is clamped to [Interval, Span] and truncated to whole
// buckets; it is never rejected.
func (l *Limiter) Count(ctx context.Context, subject string, window time.Duration) (int64, error) {
	idx := l.ring.Index(l.config.Clock.Now())
	fields := bucketFields(l.ring.Trailing(idx, window))

	values, err := l.config.Store.Fetch(ctx, l.subjectKey(subject), fields...)
	if err != nil {
		return 0, rlerrors.NewOperationError(module, "count", err).WithContext("subject=" + subject)
	}

	var total int64
	for _, v := range values {
		total += v
	}
	return total, nil
}
