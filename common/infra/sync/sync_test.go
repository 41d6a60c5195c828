package sync

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSync(t *testing.T) (*miniredis.Miniredis, *Sync) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	sync, err := NewSync(context.Background(), client)
	require.NoError(t, err)
	return s, sync
}

func TestMutexTryLock(t *testing.T) {
	s, sync := setupSync(t)
	ctx := context.Background()

	first := sync.NewMutex("LikeNums:1:mutex", WithValueFunc(func() string { return "first" }))
	second := sync.NewMutex("LikeNums:1:mutex", WithValueFunc(func() string { return "second" }))

	require.NoError(t, first.TryLock(ctx))
	got, err := s.Get("LikeNums:1:mutex")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	assert.ErrorIs(t, second.TryLock(ctx), ErrFailed)

	require.NoError(t, first.Unlock(ctx))
	assert.False(t, s.Exists("LikeNums:1:mutex"))
	require.NoError(t, second.TryLock(ctx))
	require.NoError(t, second.Unlock(ctx))
}

func TestMutexUnlockByOther(t *testing.T) {
	s, sync := setupSync(t)
	ctx := context.Background()

	m := sync.NewMutex("k", WithValueFunc(func() string { return "mine" }))
	require.NoError(t, m.TryLock(ctx))
	require.NoError(t, s.Set("k", "theirs"))
	assert.ErrorIs(t, m.Unlock(ctx), ErrUnlockByOther)

	s.Del("k")
	assert.ErrorIs(t, m.Unlock(ctx), ErrAlsoUnlock)
}

func TestMutexLockRetries(t *testing.T) {
	_, sync := setupSync(t)
	ctx := context.Background()

	holder := sync.NewMutex("k")
	require.NoError(t, holder.TryLock(ctx))

	waiter := sync.NewMutex("k",
		WithRetry(3),
		WithDelayFunc(func(int) time.Duration { return time.Millisecond }),
	)
	assert.ErrorIs(t, waiter.Lock(ctx), ErrFailed)

	require.NoError(t, holder.Unlock(ctx))
	require.NoError(t, waiter.Lock(ctx))
	require.NoError(t, waiter.Unlock(ctx))
}

func TestMutexLockTimeout(t *testing.T) {
	_, sync := setupSync(t)
	ctx := context.Background()

	holder := sync.NewMutex("k")
	require.NoError(t, holder.TryLock(ctx))
	defer holder.Unlock(ctx)

	waiter := sync.NewMutex("k", WithDelayFunc(func(int) time.Duration { return 50 * time.Millisecond }))
	assert.ErrorIs(t, waiter.LockWithTimeout(ctx, 10*time.Millisecond), ErrTimeout)
}

func TestMutexKeepAliveExtendsTTL(t *testing.T) {
	s, sync := setupSync(t)
	ctx := context.Background()

	m := sync.NewMutex("k", WithTTL(2*time.Second), WithKeepAlive(0.1), WithUtil(time.Second))
	require.NoError(t, m.TryLock(ctx))
	defer m.Unlock(ctx)

	s.FastForward(time.Second)
	assert.Eventually(t, func() bool {
		return s.TTL("k") > 2*time.Second
	}, time.Second, 20*time.Millisecond)
}
