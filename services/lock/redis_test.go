package locksvc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigplans/backend/core"
)

// needs a live redis, e.g. REDIS_ADDR=localhost:6379
func newTestLocker(t *testing.T) *RedisLocker {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	conf := &core.Config{Redis: core.RedisConfig{Address: addr, LockTTL: 2 * time.Second}}
	rdb, err := NewRedisClient(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLocker(rdb, conf, core.NopLogger{})
}

func TestNewRedisClient_disabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), &core.Config{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestRedisLocker_Acquire(t *testing.T) {
	locker := newTestLocker(t)
	key := "bigplans:test:" + t.Name()

	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "key is held")

	release()
	release2, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	release2()
}
