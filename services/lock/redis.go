package locksvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/bigplans/backend/core"
)

const retryDelay = 50 * time.Millisecond

// only the holder of the token may release the lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects to redis. It returns nil when no address is configured.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	if conf.Redis.Address == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

// RedisLocker is a core.Locker holding keys with SET NX and a TTL.
// The TTL bounds how long a crashed holder can block the others.
type RedisLocker struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger core.Logger
}

var _ core.Locker = (*RedisLocker)(nil)

func NewRedisLocker(rdb redis.UniversalClient, conf *core.Config, logger core.Logger) *RedisLocker {
	ttl := conf.Redis.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{rdb: rdb, ttl: ttl, logger: logger}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "locking %s", key)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for lock %s", key)
		case <-time.After(retryDelay):
		}
	}

	release := func() {
		// the request context may be done by now
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("releasing lock "+key, err)
		}
	}
	return release, nil
}
