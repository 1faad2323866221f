package distributed

import (
	"context"
	"fmt"

	rlcontext "github.com/vnykmshr/ringlimit/pkg/common/context"
	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
)

// Do blocks while subject is over its threshold, polling once per bucket
// interval, then runs work. Do never records an event; work should call Add
// if it wants to count.
//
// The check and work are not atomic, so concurrent callers can all pass the
// same check. Use DoLocked when that matters.
func (l *Limiter) Do(ctx context.Context, subject string, work func(ctx context.Context) error, opts ...CallOption) error {
	o, err := l.callOptions(opts)
	if err != nil {
		return err
	}

	if err := l.awaitBelow(ctx, subject, o); err != nil {
		return err
	}
	return work(ctx)
}

// DoLocked makes check-then-increment atomic across every DoLocked caller
// sharing the subject lock, then runs work outside the lock.
//
// Holding the subject lock it re-reads the count, polls once per bucket
// interval while it is at or over the threshold, records the increment and
// releases. Polling happens with the lock held, so other callers for the same
// subject queue behind it for the whole wait.
//
// Failing to get the lock within the acquire timeout returns an error wrapping
// rlerrors.ErrLockTimeout. The increment is not rolled back if work fails.
func (l *Limiter) DoLocked(ctx context.Context, subject string, work func(ctx context.Context) error, opts ...CallOption) error {
	if l.config.Locker == nil {
		return rlerrors.NewValidationError(module, "locker", nil, "cannot be nil").
			WithHint("configure a Locker to use DoLocked")
	}

	o, err := l.callOptions(opts)
	if err != nil {
		return err
	}

	lock := LockName(subject)
	l.config.Observer.LockWait(subject, lock)
	start := l.config.Clock.Now()

	err = l.config.Locker.WithLock(ctx, lock, o.owner, o.acquire, func(ctx context.Context) error {
		l.config.Observer.LockAcquired(subject, lock, l.config.Clock.Now().Sub(start))

		if err := l.awaitBelow(ctx, subject, o); err != nil {
			return err
		}
		_, err := l.Add(ctx, subject, o.increment)
		return err
	})
	if err != nil {
		return err
	}

	return work(ctx)
}

// awaitBelow polls the windowed count until it drops under the threshold.
func (l *Limiter) awaitBelow(ctx context.Context, subject string, o callOptions) error {
	waitCtx, cancel := rlcontext.WithTimeoutOrCancel(ctx, o.maxWait)
	defer cancel()

	start := l.config.Clock.Now()
	for {
		count, err := l.Count(waitCtx, subject, o.window)
		if err != nil {
			return waitError(ctx, waitCtx, err)
		}

		l.config.Observer.CountChecked(subject, count, o.threshold)
		if count < o.threshold {
			l.config.Observer.ThresholdCleared(subject, l.config.Clock.Now().Sub(start))
			return nil
		}

		if err := l.config.Wait(waitCtx, l.ring.Interval()); err != nil {
			return waitError(ctx, waitCtx, err)
		}
	}
}

// waitError reports an expired MaxWait as ErrWaitTimeout while passing
// caller cancellation and store failures through.
func waitError(parent, waitCtx context.Context, err error) error {
	if parent.Err() == nil && rlcontext.IsTimedOut(waitCtx) {
		return fmt.Errorf("%w: %w", rlerrors.ErrWaitTimeout, err)
	}
	return err
}
