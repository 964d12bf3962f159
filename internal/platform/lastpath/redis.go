package lastpath

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func redisKey(userID string) string {
	return "lastpath:" + userID
}

func (s *redisStore) Get(ctx context.Context, userID string) (string, error) {
	value, err := s.client.Get(ctx, redisKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, userID, path string) error {
	return s.client.Set(ctx, redisKey(userID), path, s.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, redisKey(userID)).Err()
}
