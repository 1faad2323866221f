// Package distributed provides approximate sliding window rate limiting shared
// across processes through Redis.
//
// A Limiter counts events per subject (a user, an API key, a client IP) in a
// ring of fixed-width buckets stored as one Redis hash per subject. Any number
// of application instances pointing at the same Redis and Key observe the same
// counts.
//
// # Overview
//
// The package provides:
//
//   - Add: record events for a subject in the current bucket
//   - Count: sum the buckets covering a trailing window
//   - Exceeded / WithinBounds: compare a window count against a threshold
//   - Do: block until the subject is under its threshold, then run work
//   - DoLocked: under a per-subject distributed lock, block until under the
//     threshold and record the increment, then run work outside the lock
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	store, _ := distributed.NewRedisStore(distributed.RedisStoreConfig{Redis: rdb})
//	locker, _ := distributed.NewRedisLocker(distributed.RedisLockerConfig{Redis: rdb})
//
//	limiter, err := distributed.New(distributed.Config{
//		Key:      "api",
//		Span:     10 * time.Minute,
//		Interval: 5 * time.Second,
//		Store:    store,
//		Locker:   locker,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	limiter.Add(ctx, "user-42", 1)
//
//	exceeded, _ := limiter.Exceeded(ctx, "user-42", time.Minute, 100)
//
// # Buckets and Approximation
//
// With Span 10m and Interval 5s the ring holds 120 buckets. An event lands in
// bucket floor((t mod Span) / Interval), so a bucket is reused once per Span.
// Every Add clears the two buckets ahead of the current one, which hold data
// from about one Span ago, and refreshes the record TTL to Expiry. A window
// count is therefore accurate to one bucket width, and a subject that goes
// quiet is forgotten entirely once its record expires.
//
// Windows passed to Count are clamped to [Interval, Span] and truncated to
// whole buckets. They never produce an error.
//
// # Blocking Execution
//
// Do is advisory: concurrent callers may all pass the same check before any
// of them records an event.
//
//	err := limiter.Do(ctx, "user-42", func(ctx context.Context) error {
//		_, err := limiter.Add(ctx, "user-42", 1)
//		return err
//	}, distributed.WithThreshold(100), distributed.WithInterval(time.Minute))
//
// DoLocked serialises callers for the same subject with the lock named
// LockName(subject). The winner re-checks the count, waits while it is over
// the threshold, records WithIncrement events and only then releases the lock
// and runs work. Because waiting happens with the lock held, other callers for
// that subject queue behind it for the whole wait; their acquire timeout
// (WithAcquireTimeout, default 10s) should account for that.
//
//	err := limiter.DoLocked(ctx, "user-42", sendEmail,
//		distributed.WithThreshold(5),
//		distributed.WithInterval(time.Minute),
//		distributed.WithOwner("mailer-1"),
//	)
//	if errors.Is(err, rlerrors.ErrLockTimeout) {
//		// lock not acquired in time; retry the whole call if desired
//	}
//
// DoLocked only excludes other DoLocked callers. Direct Add calls and Do
// callers bypass the lock. If work fails, the increment is not rolled back.
//
// # Cancellation
//
// Both strategies poll once per Interval through Config.Wait and stop when the
// context ends. Config.MaxWait (or WithMaxWait per call) bounds the polling
// time and fails the call with rlerrors.ErrWaitTimeout.
//
// # Observability
//
// Config.Observer receives LockWait, LockAcquired, CountChecked and
// ThresholdCleared callbacks. NewLogObserver writes them to a zap logger and
// NewMetricsObserver records them in Prometheus; combine both with Observers.
//
// # Stores and Locks
//
//   - RedisStore: one hash per subject, writes in MULTI/EXEC, reads with HMGET
//   - RedisLocker: redsync mutexes, extended every Expiry/2 while held
//   - MemoryStore, MemoryLocker: single-process equivalents
//
// Redis drops idle subjects through PEXPIRE. A MemoryStore only drops them on
// access, so long-running processes should start a sweeper:
//
//	sweeper, err := distributed.StartSweeper(store, distributed.DefaultSweepSchedule, logger)
//	defer sweeper.Stop()
//
// # Error Handling
//
//	switch {
//	case errors.Is(err, rlerrors.ErrInvalidConfiguration):
//		// bad Config or CallOption
//	case errors.Is(err, rlerrors.ErrLockTimeout):
//		// DoLocked could not get the subject lock
//	case errors.Is(err, rlerrors.ErrWaitTimeout):
//		// MaxWait elapsed before the subject cleared its threshold
//	default:
//		var redisErr *distributed.RedisError
//		if errors.As(err, &redisErr) {
//			// Redis operation error, not retried
//		}
//	}
//
// # Examples
//
// See the example tests:
//   - Example_basicUsage: Add, Count and Exceeded against Redis
//   - Example_doLocked: lock-coordinated execution
//   - Example_memory: single-process limiter
package distributed
