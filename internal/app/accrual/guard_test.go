package accrual

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-staking-app/internal/db/dbtest"
)

func newRedisGuard(t *testing.T) (*RedisGuard, *miniredis.Miniredis) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	g, ok := NewGuard(rdb).(*RedisGuard)
	require.True(t, ok)
	return g, m
}

func TestRedisGuard(t *testing.T) {
	g, m := newRedisGuard(t)
	ctx := context.Background()
	key := "staking:accrual:2024-03-06"

	release, ok, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, m.Exists(key))
	assert.Equal(t, time.Minute, m.TTL(key))

	_, ok, err = g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	assert.False(t, m.Exists(key))

	_, ok, err = g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGuardReleaseKeepsNewHolder(t *testing.T) {
	g, m := newRedisGuard(t)
	ctx := context.Background()
	key := "staking:accrual:2024-03-06"

	stale, ok, err := g.Acquire(ctx, key, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	m.FastForward(2 * time.Second)
	fresh, ok, err := g.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// the expired holder must not free the key it no longer owns
	stale()
	assert.True(t, m.Exists(key))

	fresh()
	assert.False(t, m.Exists(key))
}

func TestRedisGuardUnavailable(t *testing.T) {
	g, m := newRedisGuard(t)
	m.Close()

	_, ok, err := g.Acquire(context.Background(), "k", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRunWithRedisGuard(t *testing.T) {
	f := setup(t, Options{})
	g, m := newRedisGuard(t)
	f.sched.guard = g
	user := dbtest.SeedUser(t, f.db)
	f.open(t, user, "1", "1", day1)

	require.NoError(t, m.Set(f.sched.guardKey("2024-03-06"), "other-instance"))
	report, err := f.sched.Run(context.Background(), day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, report.Busy)

	m.Del(f.sched.guardKey("2024-03-06"))
	report, err = f.sched.Run(context.Background(), day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Credited)
	assert.False(t, m.Exists(f.sched.guardKey("2024-03-06")))
}
