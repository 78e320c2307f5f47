package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKey     = "onboarding_ai:generation"
	defaultTTL     = 15 * time.Minute
	releaseTimeout = 5 * time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a generation lock shared by every replica pointed at the same Redis.
// The TTL bounds how long a crashed holder can block other runs.
type Redis struct {
	log    *slog.Logger
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedis(log *slog.Logger, client redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Redis{
		log:    log,
		client: client,
		key:    defaultKey,
		ttl:    ttl,
	}
}

func (r *Redis) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire redis lock: %w", err)
	}

	if !ok {
		return nil, domain.ErrGenerationInProgress
	}

	return func() {
		// the run context may already be canceled
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil {
			r.log.ErrorContext(ctx, "failed to release redis lock", slog.String("err", err.Error()))
		}
	}, nil
}
