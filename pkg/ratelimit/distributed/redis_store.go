package distributed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/ringlimit/pkg/common/validation"
)

// RedisStoreConfig holds configuration for a Redis-backed Store.
type RedisStoreConfig struct {
	// Redis client for the shared counters
	Redis redis.UniversalClient

	// Prefix namespaces every subject record (defaults to "ringlimit:")
	Prefix string

	// RedisTimeout is the timeout for Redis operations (defaults to 500ms)
	RedisTimeout time.Duration
}

// DefaultRedisStoreConfig returns a configuration with defaults filled in.
// Redis still has to be provided.
func DefaultRedisStoreConfig() RedisStoreConfig {
	return RedisStoreConfig{
		Prefix:       "ringlimit:",
		RedisTimeout: 500 * time.Millisecond,
	}
}

// RedisStore keeps each subject record in a Redis hash of bucket to count.
type RedisStore struct {
	config RedisStoreConfig
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(config RedisStoreConfig) (*RedisStore, error) {
	if err := validation.ValidateNotNil(module, "redis", config.Redis); err != nil {
		return nil, err
	}

	defaults := DefaultRedisStoreConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.RedisTimeout == 0 {
		config.RedisTimeout = defaults.RedisTimeout
	}

	return &RedisStore{config: config}, nil
}

// Apply runs HINCRBY, HDEL and PEXPIRE in a single MULTI/EXEC transaction.
func (s *RedisStore) Apply(ctx context.Context, key string, m Mutation) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RedisTimeout)
	defer cancel()

	key = s.config.Prefix + key

	var incr *redis.IntCmd
	_, err := s.config.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, m.Field, m.Delta)
		if len(m.Delete) > 0 {
			pipe.HDel(ctx, key, m.Delete...)
		}
		if m.TTL > 0 {
			pipe.PExpire(ctx, key, m.TTL)
		}
		return nil
	})
	if err != nil {
		return 0, &RedisError{"apply", err}
	}

	return incr.Val(), nil
}

// Fetch reads all fields with a single HMGET.
func (s *RedisStore) Fetch(ctx context.Context, key string, fields ...string) ([]int64, error) {
	values := make([]int64, len(fields))
	if len(fields) == 0 {
		return values, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.RedisTimeout)
	defer cancel()

	raw, err := s.config.Redis.HMGet(ctx, s.config.Prefix+key, fields...).Result()
	if err != nil {
		return nil, &RedisError{"fetch", err}
	}

	for i, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return nil, &RedisError{"fetch", fmt.Errorf("field %s: %w", fields[i], err)}
		}
		values[i] = n
	}

	return values, nil
}
