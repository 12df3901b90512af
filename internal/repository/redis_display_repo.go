package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"promptbox-backend/internal/models"
)

// applyScript sets the display value unless latest-only mode is on and a newer
// token has been issued since.
var applyScript = redis.NewScript(`
if ARGV[1] == "1" then
	local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
	if cur ~= tonumber(ARGV[2]) then
		return 0
	end
end
redis.call("SET", KEYS[2], ARGV[3], "PX", ARGV[4])
return 1
`)

// RedisDisplayRepo keeps display slots in Redis so several server instances
// share them.
type RedisDisplayRepo struct {
	redis      *redis.Client
	latestOnly bool
	ttl        time.Duration
}

func NewRedisDisplayRepo(redisClient *redis.Client, latestOnly bool, ttl time.Duration) *RedisDisplayRepo {
	return &RedisDisplayRepo{redis: redisClient, latestOnly: latestOnly, ttl: ttl}
}

func seqKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("display_seq:%s", sessionID.String())
}

func displayKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("display:%s", sessionID.String())
}

func (r *RedisDisplayRepo) Begin(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, seqKey(sessionID))
	pipe.Expire(ctx, seqKey(sessionID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to issue display sequence: %w", err)
	}
	return incr.Val(), nil
}

func (r *RedisDisplayRepo) Apply(ctx context.Context, state models.DisplayState) (bool, error) {
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(state)
	if err != nil {
		return false, fmt.Errorf("failed to encode display state: %w", err)
	}

	latest := "0"
	if r.latestOnly {
		latest = "1"
	}

	applied, err := applyScript.Run(ctx, r.redis,
		[]string{seqKey(state.SessionID), displayKey(state.SessionID)},
		latest, state.Sequence, string(data), r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to apply display state: %w", err)
	}
	return applied == 1, nil
}

func (r *RedisDisplayRepo) Get(ctx context.Context, sessionID uuid.UUID) (*models.DisplayState, error) {
	data, err := r.redis.Get(ctx, displayKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.DisplayState{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, err
	}

	var state models.DisplayState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode display state: %w", err)
	}
	return &state, nil
}
