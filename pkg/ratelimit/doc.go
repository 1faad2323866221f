/*
Package ratelimit groups the ringlimit rate limiting packages.

  - ring: maps wall-clock time onto a fixed ring of buckets
  - distributed: sliding window counters shared through Redis, with
    threshold checks and blocking execution strategies

A window count is the sum of the buckets covering the window, so it is
accurate to one bucket width:

	limiter, _ := distributed.New(distributed.Config{
		Key:      "api",
		Span:     10 * time.Minute,
		Interval: 5 * time.Second,
		Store:    store,
	})

	limiter.Add(ctx, "user-42", 1)
	count, _ := limiter.Count(ctx, "user-42", time.Minute)

All limiters are safe for concurrent use and integrate with the context
package for cancellation and timeouts.
*/
package ratelimit
