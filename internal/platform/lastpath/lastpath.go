package lastpath

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"hrportal/internal/platform/config"
)

// Store remembers, per user, the most recent protected route visited while
// signed in. A single string per user, last write wins.
type Store interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, path string) error
	Clear(ctx context.Context, userID string) error
}

// New picks the Redis-backed store when REDIS_ADDR is configured and
// reachable, otherwise an in-memory store. Redis failures degrade rather
// than block startup: remembered paths are convenience state, not data of
// record.
func New(cfg config.Config) Store {
	if cfg.RedisAddr == "" {
		return NewMemory()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-memory last-path store", "addr", cfg.RedisAddr, "err", err)
		return NewMemory()
	}
	return &redisStore{client: client, ttl: cfg.LastPathTTL}
}

type Memory struct {
	mu    sync.RWMutex
	paths map[string]string
}

func NewMemory() *Memory {
	return &Memory{paths: map[string]string{}}
}

func (m *Memory) Get(_ context.Context, userID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths[userID], nil
}

func (m *Memory) Set(_ context.Context, userID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[userID] = path
	return nil
}

func (m *Memory) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.paths, userID)
	return nil
}
