package distributed

import (
	"context"
	"time"
)

// Mutation is a single atomic write against one subject record.
type Mutation struct {
	// Field is incremented by Delta, starting from 0 when absent
	Field string
	Delta int64

	// Delete lists fields removed in the same transaction; absent fields are ignored
	Delete []string

	// TTL resets the expiry of the whole record; 0 leaves it untouched
	TTL time.Duration
}

// Store is the shared counter capability a Limiter writes through.
// Every subject record is a hash of bucket field to count.
type Store interface {
	// Apply executes m atomically against key and returns the value of
	// m.Field after the increment.
	Apply(ctx context.Context, key string, m Mutation) (int64, error)

	// Fetch reads fields from key in one round trip. Missing fields and
	// missing keys read as 0.
	Fetch(ctx context.Context, key string, fields ...string) ([]int64, error)
}

// Locker is the distributed mutual exclusion capability used by DoLocked.
type Locker interface {
	// WithLock blocks until the lock called name is held or acquire elapses,
	// runs body while holding it and always releases it afterwards.
	// Failing to acquire in time returns an error wrapping rlerrors.ErrLockTimeout.
	WithLock(ctx context.Context, name, owner string, acquire time.Duration, body func(ctx context.Context) error) error
}

// RedisError represents a Redis operation error.
type RedisError struct {
	Operation string
	Err       error
}

func (e *RedisError) Error() string {
	return "redis error in " + e.Operation + ": " + e.Err.Error()
}

func (e *RedisError) Unwrap() error {
	return e.Err
}
