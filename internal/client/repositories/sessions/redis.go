package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shonkhipto/internal/client/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "shonkhipto:session:"

// RedisRepository stores each session as a JSON blob whose TTL matches the
// session expiry, so Redis drops stale sessions on its own.
type RedisRepository struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client, now: time.Now}
}

func redisKey(profile string) string {
	return redisKeyPrefix + profile
}

func (r *RedisRepository) Get(ctx context.Context, profile string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, redisKey(profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", profile, err)
	}

	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session[%s]: %w", profile, err)
	}
	return &s, nil
}

// Put writes the record with a TTL running until ExpiresAt. A record that is
// already expired removes whatever is stored instead.
func (r *RedisRepository) Put(ctx context.Context, profile string, s *models.Session) error {
	if err := validate(s); err != nil {
		return err
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx, profile)
		}
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session[%s]: %w", profile, err)
	}
	if err := r.client.Set(ctx, redisKey(profile), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to put session[%s]: %w", profile, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, profile string) error {
	if err := r.client.Del(ctx, redisKey(profile)).Err(); err != nil {
		return fmt.Errorf("failed to delete session[%s]: %w", profile, err)
	}
	return nil
}
