package distributed

import (
	"time"

	"github.com/vnykmshr/ringlimit/pkg/common/validation"
)

// CallOption configures a single Do or DoLocked call.
type CallOption func(*callOptions)

type callOptions struct {
	window    time.Duration
	threshold int64
	increment int64
	acquire   time.Duration
	owner     string
	maxWait   time.Duration
}

// WithInterval sets the trailing window the threshold applies to (default 30s).
func WithInterval(window time.Duration) CallOption {
	return func(o *callOptions) {
		o.window = window
	}
}

// WithThreshold sets the count at which the subject is considered over its limit (default 30).
func WithThreshold(threshold int64) CallOption {
	return func(o *callOptions) {
		o.threshold = threshold
	}
}

// WithIncrement sets how many events DoLocked records once it proceeds (default 1).
func WithIncrement(increment int64) CallOption {
	return func(o *callOptions) {
		o.increment = increment
	}
}

// WithAcquireTimeout bounds how long DoLocked waits for the subject lock (default 10s).
func WithAcquireTimeout(acquire time.Duration) CallOption {
	return func(o *callOptions) {
		o.acquire = acquire
	}
}

// WithOwner sets the caller identity recorded on the lock (default Config.InstanceID).
func WithOwner(owner string) CallOption {
	return func(o *callOptions) {
		o.owner = owner
	}
}

// WithMaxWait bounds time spent polling for this call, overriding Config.MaxWait.
// 0 disables the bound.
func WithMaxWait(maxWait time.Duration) CallOption {
	return func(o *callOptions) {
		o.maxWait = maxWait
	}
}

func (l *Limiter) callOptions(opts []CallOption) (callOptions, error) {
	o := callOptions{
		window:    DefaultWindow,
		threshold: DefaultThreshold,
		increment: DefaultIncrement,
		acquire:   DefaultAcquireTimeout,
		owner:     l.config.InstanceID,
		maxWait:   l.config.MaxWait,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validation.ValidatePositive(module, "threshold", o.threshold); err != nil {
		return o, err
	}
	if err := validation.ValidatePositive(module, "increment", o.increment); err != nil {
		return o, err
	}
	if err := validation.ValidatePositiveDuration(module, "acquire", o.acquire); err != nil {
		return o, err
	}
	if err := validation.ValidateNotEmpty(module, "owner", o.owner); err != nil {
		return o, err
	}
	if err := validation.ValidateNonNegativeDuration(module, "max_wait", o.maxWait); err != nil {
		return o, err
	}
	return o, nil
}
