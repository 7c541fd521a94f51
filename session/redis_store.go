package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/upb/student-records/config"
)

const redisOpTimeout = 500 * time.Millisecond

// redisKVClient is the subset of *redis.Client the store needs
type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStore struct {
	client redisKVClient
	prefix string
}

// NewRedisStore creates a session store on top of a Redis client
func NewRedisStore(client *redis.Client, prefix string) Store {
	if client == nil {
		return nil
	}
	return newRedisStore(client, prefix)
}

func newRedisStore(client redisKVClient, prefix string) *redisStore {
	if prefix == "" {
		prefix = "session:"
	}
	return &redisStore{client: client, prefix: prefix}
}

// Connect opens a Redis client and verifies it answers PING
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func (s *redisStore) Save(ctx context.Context, rec Record, ttl time.Duration) error {
	if strings.TrimSpace(rec.ID) == "" {
		return nil
	}
	if ttl > 0 && rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = time.Now().UTC().Add(ttl)
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+rec.ID, payload, ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	payload, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if rec.Expired(time.Now().UTC()) {
		return nil, nil
	}
	return &rec, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id).Err()
}
