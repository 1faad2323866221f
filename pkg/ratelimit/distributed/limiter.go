package distributed

import (
	"context"
	"time"

	rlcontext "github.com/vnykmshr/ringlimit/pkg/common/context"
	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
	"github.com/vnykmshr/ringlimit/pkg/common/validation"
	"github.com/vnykmshr/ringlimit/pkg/ratelimit/ring"
)

const module = "distributed"

// Defaults for limiter construction.
const (
	DefaultSpan     = 600 * time.Second
	DefaultInterval = 5 * time.Second
)

// Defaults for blocking calls.
const (
	DefaultWindow         = 30 * time.Second
	DefaultThreshold      = 30
	DefaultIncrement      = 1
	DefaultAcquireTimeout = 10 * time.Second
)

// Clock provides the current time to the bucket clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// WaitFunc suspends the caller for d, returning early with an error when ctx ends.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Config holds configuration for a sliding window limiter.
type Config struct {
	// Key names the limit family; subject records live under "{Key}:{subject}"
	Key string

	// Span is the total duration tracked by the bucket ring (defaults to 10 minutes)
	Span time.Duration

	// Interval is the width of one bucket (defaults to 5 seconds)
	Interval time.Duration

	// Expiry drops a subject's whole record after this long without writes
	// (defaults to Span, must not exceed it)
	Expiry time.Duration

	// Store holds the per-subject bucket counters
	Store Store

	// Locker coordinates DoLocked callers; only required by DoLocked
	Locker Locker

	// InstanceID is the default lock owner token for this process
	InstanceID string

	// Clock drives the bucket clock (defaults to SystemClock)
	Clock Clock

	// Wait is the suspension point used between polls (defaults to a
	// context-aware sleep)
	Wait WaitFunc

	// Observer receives lifecycle callbacks (defaults to NopObserver)
	Observer Observer

	// MaxWait bounds the time a blocking call spends polling; 0 waits until
	// the threshold clears or the context ends
	MaxWait time.Duration
}

// DefaultConfig returns a configuration with every optional field populated.
// Key and Store still have to be provided.
func DefaultConfig() Config {
	return Config{
		Span:       DefaultSpan,
		Interval:   DefaultInterval,
		Expiry:     DefaultSpan,
		InstanceID: generateInstanceID(),
		Clock:      SystemClock{},
		Wait:       rlcontext.Sleep,
		Observer:   NopObserver{},
	}
}

// Limiter is an approximate sliding window counter shared through a Store.
// It is safe for concurrent use.
type Limiter struct {
	config Config
	ring   ring.Ring
}

// New creates a limiter. Invalid configurations return an error wrapping
// rlerrors.ErrInvalidConfiguration and no limiter.
func New(config Config) (*Limiter, error) {
	config = applyConfigDefaults(config)

	r, err := validateConfig(config)
	if err != nil {
		return nil, err
	}

	return &Limiter{config: config, ring: r}, nil
}

// validateConfig validates the limiter configuration and builds its ring.
func validateConfig(config Config) (ring.Ring, error) {
	if err := validation.ValidateNotEmpty(module, "key", config.Key); err != nil {
		return ring.Ring{}, err
	}
	if err := validation.ValidateNotNil(module, "store", config.Store); err != nil {
		return ring.Ring{}, err
	}

	r, err := ring.New(config.Span, config.Interval)
	if err != nil {
		return ring.Ring{}, err
	}

	if err := validation.ValidatePositiveDuration(module, "expiry", config.Expiry); err != nil {
		return ring.Ring{}, err
	}
	if config.Expiry > config.Span {
		return ring.Ring{}, rlerrors.NewValidationError(module, "expiry", config.Expiry, "exceeds span").
			WithHint("expiry must be less than or equal to span " + config.Span.String())
	}
	if err := validation.ValidateNonNegativeDuration(module, "max_wait", config.MaxWait); err != nil {
		return ring.Ring{}, err
	}

	return r, nil
}

// applyConfigDefaults sets default values for unspecified config fields.
func applyConfigDefaults(config Config) Config {
	if config.Span == 0 {
		config.Span = DefaultSpan
	}
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.Expiry == 0 {
		config.Expiry = config.Span
	}
	if config.InstanceID == "" {
		config.InstanceID = generateInstanceID()
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}
	if config.Wait == nil {
		config.Wait = rlcontext.Sleep
	}
	if config.Observer == nil {
		config.Observer = NopObserver{}
	}
	return config
}

// Key returns the limit family name.
func (l *Limiter) Key() string { return l.config.Key }

// Span returns the total tracked duration.
func (l *Limiter) Span() time.Duration { return l.ring.Span() }

// Interval returns the bucket width, which is also the polling period.
func (l *Limiter) Interval() time.Duration { return l.ring.Interval() }

// Buckets returns the number of buckets in the ring.
func (l *Limiter) Buckets() int { return l.ring.Count() }

// InstanceID returns the default lock owner token.
func (l *Limiter) InstanceID() string { return l.config.InstanceID }

// Observer returns the configured observer, so callers making their own
// threshold decisions can report them the way the executor does.
func (l *Limiter) Observer() Observer { return l.config.Observer }

// subjectKey composes the store key for a subject record.
func (l *Limiter) subjectKey(subject string) string {
	return l.config.Key + ":" + subject
}
