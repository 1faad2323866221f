package distributed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
	"github.com/vnykmshr/ringlimit/pkg/common/validation"
)

// MinLockExpiry is the shortest lock TTL a RedisLocker accepts. Redis keeps
// TTLs in milliseconds and the lock is renewed every Expiry/2.
const MinLockExpiry = 2 * time.Millisecond

// RedisLockerConfig holds configuration for a redsync-backed Locker.
type RedisLockerConfig struct {
	// Redis client holding the lock keys
	Redis redis.UniversalClient

	// Prefix namespaces every lock key (defaults to "ringlimit:lock:")
	Prefix string

	// Expiry is the lock TTL; a held lock is extended every Expiry/2
	// (defaults to 8s, at least MinLockExpiry)
	Expiry time.Duration

	// RetryDelay is the pause between acquisition attempts (defaults to 100ms)
	RetryDelay time.Duration

	// RedisTimeout bounds the release call (defaults to 500ms)
	RedisTimeout time.Duration
}

// DefaultRedisLockerConfig returns a configuration with defaults filled in.
// Redis still has to be provided.
func DefaultRedisLockerConfig() RedisLockerConfig {
	return RedisLockerConfig{
		Prefix:       "ringlimit:lock:",
		Expiry:       8 * time.Second,
		RetryDelay:   100 * time.Millisecond,
		RedisTimeout: 500 * time.Millisecond,
	}
}

// RedisLocker implements Locker with redsync mutexes.
type RedisLocker struct {
	config RedisLockerConfig
	rs     *redsync.Redsync
}

// NewRedisLocker creates a Locker whose locks live in config.Redis.
func NewRedisLocker(config RedisLockerConfig) (*RedisLocker, error) {
	if err := validation.ValidateNotNil(module, "redis", config.Redis); err != nil {
		return nil, err
	}

	defaults := DefaultRedisLockerConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.Expiry == 0 {
		config.Expiry = defaults.Expiry
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = defaults.RedisTimeout
	}
	if err := validation.ValidatePositiveDuration(module, "expiry", config.Expiry); err != nil {
		return nil, err
	}
	if config.Expiry < MinLockExpiry {
		return nil, rlerrors.NewValidationError(module, "expiry", config.Expiry, "below minimum lock expiry").
			WithHint("use an expiry of at least " + MinLockExpiry.String())
	}
	if err := validation.ValidatePositiveDuration(module, "retry_delay", config.RetryDelay); err != nil {
		return nil, err
	}

	return &RedisLocker{
		config: config,
		rs:     redsync.New(goredis.NewPool(config.Redis)),
	}, nil
}

// WithLock implements Locker. The lock value is owner plus a random suffix,
// so the holder stays attributable while every acquisition is distinct.
func (l *RedisLocker) WithLock(ctx context.Context, name, owner string, acquire time.Duration, body func(ctx context.Context) error) error {
	if err := validation.ValidatePositiveDuration(module, "acquire", acquire); err != nil {
		return err
	}

	value := owner + "/" + uuid.NewString()
	mutex := l.rs.NewMutex(l.config.Prefix+name,
		redsync.WithExpiry(l.config.Expiry),
		redsync.WithTries(int(acquire/l.config.RetryDelay)+1),
		redsync.WithRetryDelay(l.config.RetryDelay),
		redsync.WithGenValueFunc(func() (string, error) { return value, nil }),
	)

	if err := l.acquire(ctx, mutex, name, acquire); err != nil {
		return err
	}

	bodyCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.renew(bodyCtx, mutex, cancel, done)
	}()

	bodyErr := body(bodyCtx)
	close(done)
	wg.Wait()

	if errors.Is(context.Cause(bodyCtx), rlerrors.ErrLockLost) {
		_ = l.release(ctx, mutex, name)
		return fmt.Errorf("%w: %s could not be renewed", rlerrors.ErrLockLost, name)
	}

	return errors.Join(bodyErr, l.release(ctx, mutex, name))
}

func (l *RedisLocker) acquire(ctx context.Context, mutex *redsync.Mutex, name string, acquire time.Duration) error {
	acquireCtx, cancel := context.WithTimeout(ctx, acquire)
	defer cancel()

	err := mutex.LockContext(acquireCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) || acquireCtx.Err() != nil {
		return fmt.Errorf("%w: %s after %s", rlerrors.ErrLockTimeout, name, acquire)
	}
	return &RedisError{"lock", err}
}

// renew extends the lock every Expiry/2 until done is closed, cancelling ctx
// with ErrLockLost when an extension fails.
func (l *RedisLocker) renew(ctx context.Context, mutex *redsync.Mutex, cancel context.CancelCauseFunc, done <-chan struct{}) {
	ticker := time.NewTicker(l.config.Expiry / 2)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ok, err := mutex.ExtendContext(ctx); err != nil || !ok {
				cancel(rlerrors.ErrLockLost)
				return
			}
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, mutex *redsync.Mutex, name string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.config.RedisTimeout)
	defer cancel()

	ok, err := mutex.UnlockContext(ctx)
	switch {
	case err != nil:
		return fmt.Errorf("%w: releasing %s: %w", rlerrors.ErrLockLost, name, err)
	case !ok:
		return fmt.Errorf("%w: %s was no longer held", rlerrors.ErrLockLost, name)
	}
	return nil
}
