package lua

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	s := miniredis.RunT(t)
	return s, redis.NewClient(&redis.Options{Addr: s.Addr()})
}

var incr = NewScript("incr", 1, `
local key=KEYS[1]
return redis.call("INCRBY",key,ARGV[1])
`)

func TestExecutor(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()
	e := NewExecutor(client)

	n, err := e.Load(ctx, []*Script{incr})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	res, err := e.Execute(ctx, incr, []string{"counter"}, 2).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(2), res)

	n, err = e.Load(ctx, []*Script{incr})
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestExecutorUnknownScript(t *testing.T) {
	_, client := setupRedis(t)
	e := NewExecutor(client)
	err := e.Execute(context.Background(), NewScript("missing", 0, "return 1"), nil).Err()
	assert.ErrorIs(t, err, ErrUnknownScript)
}

func TestExecutorReloadsFlushedScript(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()
	e := NewExecutor(client)
	_, err := e.Load(ctx, []*Script{incr})
	require.NoError(t, err)

	require.NoError(t, client.ScriptFlush(ctx).Err())

	res, err := e.Execute(ctx, incr, []string{"counter"}, 3).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), res)
}

func TestExecutorKeysMismatch(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()
	e := NewExecutor(client)
	_, err := e.Load(ctx, []*Script{incr})
	require.NoError(t, err)
	err = e.Execute(ctx, incr, []string{"a", "b"}, 1).Err()
	assert.ErrorIs(t, err, ErrKeysMismatch)
}
