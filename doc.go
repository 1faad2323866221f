/*
Package ringlimit provides approximate sliding window rate limiting shared
across application instances through Redis.

Rate Limiting (pkg/ratelimit):
  - ring: bucket clock mapping time onto a fixed ring of buckets
  - distributed: per-subject counters, threshold checks, and blocking
    execution with optional distributed locking

Supporting packages:
  - metrics: Prometheus instrumentation
  - middleware: net/http and Huma request gating
  - events: threshold events published through watermill

Example usage:

	import (
		"github.com/vnykmshr/ringlimit/pkg/ratelimit/distributed"
	)

	store, _ := distributed.NewRedisStore(distributed.RedisStoreConfig{Redis: rdb})
	limiter, _ := distributed.New(distributed.Config{Key: "api", Store: store})

	err := limiter.Do(ctx, "user-42", work, distributed.WithThreshold(100))
*/
package ringlimit
