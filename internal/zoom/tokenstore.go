package zoom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryTokenStore caches the token in process memory behind a mutex.
type MemoryTokenStore struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewMemoryTokenStore returns an empty in-process token cache.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get(_ context.Context) (string, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.expiresAt, nil
}

func (s *MemoryTokenStore) Put(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
	return nil
}

// RedisTokenStore shares the token across replicas. The upstream invalidates
// previously issued tokens when a new one is minted, so replicas must not
// each hold their own.
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

// NewRedisTokenStore connects to Redis using a redis:// URL.
func NewRedisTokenStore(redisURL, key string) (*RedisTokenStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if key == "" {
		key = "zoom:access_token"
	}
	return &RedisTokenStore{client: redis.NewClient(opt), key: key}, nil
}

func (s *RedisTokenStore) Get(ctx context.Context) (string, time.Time, error) {
	pipe := s.client.Pipeline()
	get := pipe.Get(ctx, s.key)
	ttl := pipe.TTL(ctx, s.key)
	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return "", time.Time{}, nil
		}
		return "", time.Time{}, fmt.Errorf("redis get token: %w", err)
	}
	return get.Val(), time.Now().Add(ttl.Val()), nil
}

func (s *RedisTokenStore) Put(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisTokenStore) Close() error { return s.client.Close() }
