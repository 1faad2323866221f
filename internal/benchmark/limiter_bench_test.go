package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/ringlimit/pkg/ratelimit/distributed"
	"github.com/vnykmshr/ringlimit/pkg/ratelimit/ring"
)

func bucketLabel(n int) string {
	return fmt.Sprintf("buckets-%d", n)
}

func newMemoryLimiter(b *testing.B, span, interval time.Duration) *distributed.Limiter {
	b.Helper()

	limiter, err := distributed.New(distributed.Config{
		Key:      "bench",
		Span:     span,
		Interval: interval,
		Store:    distributed.NewMemoryStore(nil),
		Locker:   distributed.NewMemoryLocker(),
	})
	if err != nil {
		b.Fatalf("failed to create limiter: %v", err)
	}
	return limiter
}

func newRedisLimiter(b *testing.B) *distributed.Limiter {
	b.Helper()

	server, err := miniredis.Run()
	if err != nil {
		b.Fatalf("failed to start redis: %v", err)
	}
	b.Cleanup(server.Close)

	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	b.Cleanup(func() { _ = rdb.Close() })

	store, err := distributed.NewRedisStore(distributed.RedisStoreConfig{Redis: rdb})
	if err != nil {
		b.Fatalf("failed to create store: %v", err)
	}

	limiter, err := distributed.New(distributed.Config{Key: "bench", Store: store})
	if err != nil {
		b.Fatalf("failed to create limiter: %v", err)
	}
	return limiter
}

// BenchmarkRingIndex measures bucket index computation.
func BenchmarkRingIndex(b *testing.B) {
	r, err := ring.New(10*time.Minute, 5*time.Second)
	if err != nil {
		b.Fatalf("failed to create ring: %v", err)
	}
	now := time.Now()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Index(now.Add(time.Duration(i) * time.Millisecond))
	}
}

// BenchmarkMemoryAdd measures recording events in the in-process store.
func BenchmarkMemoryAdd(b *testing.B) {
	limiter := newMemoryLimiter(b, 10*time.Minute, 5*time.Second)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = limiter.Add(ctx, "subject", 1)
	}
}

// BenchmarkMemoryCount measures window counts across ring sizes.
func BenchmarkMemoryCount(b *testing.B) {
	intervals := []time.Duration{time.Minute, 5 * time.Second, time.Second}

	for _, interval := range intervals {
		limiter := newMemoryLimiter(b, 10*time.Minute, interval)
		b.Run(bucketLabel(limiter.Buckets()), func(b *testing.B) {
			ctx := context.Background()
			_, _ = limiter.Add(ctx, "subject", 1)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = limiter.Count(ctx, "subject", limiter.Span())
			}
		})
	}
}

// BenchmarkMemoryConcurrent measures mixed Add and Exceeded calls from many goroutines.
func BenchmarkMemoryConcurrent(b *testing.B) {
	limiter := newMemoryLimiter(b, 10*time.Minute, 5*time.Second)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if exceeded, _ := limiter.Exceeded(ctx, "subject", time.Minute, 1<<40); !exceeded {
				_, _ = limiter.Add(ctx, "subject", 1)
			}
		}
	})
}

// BenchmarkMemoryDoLocked measures lock-coordinated execution without contention.
func BenchmarkMemoryDoLocked(b *testing.B) {
	limiter := newMemoryLimiter(b, 10*time.Minute, 5*time.Second)
	ctx := context.Background()
	work := func(context.Context) error { return nil }

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		subject := fmt.Sprintf("subject-%d", i)
		_ = limiter.DoLocked(ctx, subject, work)
	}
}

// BenchmarkRedisAdd measures the MULTI/EXEC write path against an in-process Redis.
func BenchmarkRedisAdd(b *testing.B) {
	limiter := newRedisLimiter(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = limiter.Add(ctx, "subject", 1)
	}
}

// BenchmarkRedisCount measures the HMGET read path over the default 120 bucket ring.
func BenchmarkRedisCount(b *testing.B) {
	limiter := newRedisLimiter(b)
	ctx := context.Background()
	_, _ = limiter.Add(ctx, "subject", 1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = limiter.Count(ctx, "subject", limiter.Span())
	}
}
