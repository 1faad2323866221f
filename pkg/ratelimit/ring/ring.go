// Package ring maps wall-clock time onto a fixed-size circular set of buckets.
//
// A Ring covering span with buckets of width interval has round(span/interval)
// slots. The same slot is reused every span, which bounds the storage a subject
// needs regardless of event volume and is also the source of the sliding
// window's approximation.
package ring

import (
	"math"
	"time"

	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
	"github.com/vnykmshr/ringlimit/pkg/common/validation"
)

// MinBuckets is the smallest usable ring: the current bucket plus the two
// buckets cleared ahead of it on every write.
const MinBuckets = 3

// Ring is an immutable bucket clock. The zero value is not usable; build one with New.
type Ring struct {
	span     time.Duration
	interval time.Duration
	count    int
}

// New returns a ring of round(span/interval) buckets.
func New(span, interval time.Duration) (Ring, error) {
	if err := validation.ValidatePositiveDuration("ring", "span", span); err != nil {
		return Ring{}, err
	}
	if err := validation.ValidatePositiveDuration("ring", "interval", interval); err != nil {
		return Ring{}, err
	}

	count := int(math.Round(float64(span) / float64(interval)))
	if count < MinBuckets {
		return Ring{}, rlerrors.NewValidationError("ring", "buckets", count, "must be at least 3").
			WithHint("span must cover at least three intervals")
	}

	return Ring{span: span, interval: interval, count: count}, nil
}

// Span returns the total duration tracked before the ring wraps.
func (r Ring) Span() time.Duration { return r.span }

// Interval returns the width of one bucket.
func (r Ring) Interval() time.Duration { return r.interval }

// Count returns the number of buckets.
func (r Ring) Count() int { return r.count }

// Index returns the bucket t falls into.
func (r Ring) Index(t time.Time) int {
	span := int64(r.span)
	offset := t.UnixNano() % span
	if offset < 0 {
		offset += span
	}

	// a span that is not a whole number of intervals leaves a short
	// trailing slot; it shares the last bucket
	return min(int(offset/int64(r.interval)), r.count-1)
}

// Ahead returns the two buckets following idx, which hold the stalest data.
func (r Ring) Ahead(idx int) []int {
	return []int{r.wrap(idx + 1), r.wrap(idx + 2)}
}

// Clamp bounds window to [Interval, Span].
func (r Ring) Clamp(window time.Duration) time.Duration {
	return max(r.interval, min(window, r.span))
}

// Trailing returns the buckets covering window, walking backwards from idx
// (inclusive). The window is clamped first.
func (r Ring) Trailing(idx int, window time.Duration) []int {
	n := min(int(r.Clamp(window)/r.interval), r.count)

	buckets := make([]int, n)
	for i := range buckets {
		buckets[i] = r.wrap(idx - i)
	}
	return buckets
}

func (r Ring) wrap(idx int) int {
	idx %= r.count
	if idx < 0 {
		idx += r.count
	}
	return idx
}
