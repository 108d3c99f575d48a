package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"reservio/pkg/logger"
)

// Delete the lease only if the stored token still matches. Runs server-side
// so check and delete are a single atomic step.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// Redis implements Locker on a Redis backend. SET NX PX gives atomic
// set-if-absent with expiry, so a crashed holder blocks others for at most
// the lease TTL.
type Redis struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedis(client *redis.Client, log *logger.Logger) *Redis {
	return &Redis{client: client, log: log}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	acquired, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !acquired {
		return "", false, nil
	}

	r.log.Debug("Lease acquired", "key", key, "ttl", ttl)
	return token, true, nil
}

func (r *Redis) Release(ctx context.Context, key, token string) error {
	deleted, err := releaseScript.Run(ctx, r.client, []string{key}, token).Result()
	if err == redis.Nil {
		err = nil
	}
	if err != nil {
		return err
	}

	// A zero result means the lease expired and possibly changed hands;
	// nothing of ours is left to delete.
	if n, ok := deleted.(int64); ok && n == 0 {
		r.log.Debug("Lease already gone on release", "key", key)
	}
	return nil
}
