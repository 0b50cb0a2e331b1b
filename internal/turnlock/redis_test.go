package turnlock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisClient connects to GCSE_TEST_REDIS_ADDR or skips the test.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("GCSE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GCSE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(t.Context()).Err())
	return client
}

func TestRedis_LockRelease(t *testing.T) {
	client := redisClient(t)
	cfg := DefaultRedisConfig()
	cfg.Prefix = "gcsetutor-test:" + uuid.NewString() + ":"
	l := NewRedis(client, cfg)

	release, err := l.Lock(t.Context(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 150*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "s1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, release())
	n, err := client.Exists(t.Context(), cfg.Prefix+"s1").Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	release, err = l.Lock(t.Context(), "s1")
	require.NoError(t, err)
	require.NoError(t, release())
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	client := redisClient(t)
	cfg := DefaultRedisConfig()
	cfg.Prefix = "gcsetutor-test:" + uuid.NewString() + ":"
	cfg.TTL = 50 * time.Millisecond
	l := NewRedis(client, cfg)

	release, err := l.Lock(t.Context(), "s1")
	require.NoError(t, err)

	// Our lease expires and another holder takes over.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, client.Set(t.Context(), cfg.Prefix+"s1", "other", time.Minute).Err())

	require.NoError(t, release())
	v, err := client.Get(t.Context(), cfg.Prefix+"s1").Result()
	require.NoError(t, err)
	assert.Equal(t, "other", v)
}

func TestRedis_ConnectionError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()
	l := NewRedis(client, DefaultRedisConfig())

	_, err := l.Lock(t.Context(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}
