package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := NewMockClock(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}

func TestNewMockClock_ZeroStart(t *testing.T) {
	clock := NewMockClock(time.Time{})
	assert.WithinDuration(t, time.Now(), clock.Now(), time.Second)
}

func TestAdvancingWait(t *testing.T) {
	start := time.Unix(0, 0)
	clock := NewMockClock(start)

	var calls int64
	wait := AdvancingWait(clock, &calls)

	require.NoError(t, wait(context.Background(), 10*time.Second))
	require.NoError(t, wait(context.Background(), 10*time.Second))
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
	assert.Equal(t, start.Add(20*time.Second), clock.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wait(ctx, time.Second), context.Canceled)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(TestTimeout), deadline, time.Second)
}

func TestNewRedis(t *testing.T) {
	server, client := NewRedis(t)

	ctx, cancel := WithTimeout(t)
	defer cancel()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	got, err := server.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
