package turnlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the distributed lock.
type RedisConfig struct {
	// Prefix namespaces lock keys.
	Prefix string
	// TTL bounds how long a crashed holder can block a session.
	TTL time.Duration
	// RetryInterval is the poll interval while waiting.
	RetryInterval time.Duration
}

// DefaultRedisConfig returns sensible defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Prefix:        "gcsetutor:turnlock:",
		TTL:           2 * time.Minute,
		RetryInterval: 50 * time.Millisecond,
	}
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX PX, shared across server replicas.
type Redis struct {
	client redis.UniversalClient
	cfg    RedisConfig
}

// NewRedis creates a Redis-backed Locker.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	def := DefaultRedisConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	return &Redis{client: client, cfg: cfg}
}

func (r *Redis) Lock(ctx context.Context, key string) (Release, error) {
	redisKey := r.cfg.Prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.cfg.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, timeoutErr(key, ctx.Err())
			}
			return nil, fmt.Errorf("turn lock %q: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, timeoutErr(key, ctx.Err())
		}
	}

	var once sync.Once
	var relErr error
	return func() error {
		once.Do(func() {
			// The turn's context may already be cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil {
				relErr = fmt.Errorf("release turn lock %q: %w", key, err)
			}
		})
		return relErr
	}, nil
}
