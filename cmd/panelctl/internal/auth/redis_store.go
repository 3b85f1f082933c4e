package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements sdk.CredentialStore on a redis hash, so operators
// sharing a jump host can share one session.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ sdk.CredentialStore = (*RedisStore)(nil)

// RedisOptions locates the redis server and the hash holding the slots.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Profile  string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisStoreWithClient(client, opts.Prefix, opts.Profile), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix, profile string) *RedisStore {
	if prefix == "" {
		prefix = "panel"
	}
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{client: client, key: fmt.Sprintf("%s:credentials:%s", prefix, profile)}
}

// Key is the redis hash the slots live in.
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Get(ctx context.Context, slot string) (string, error) {
	v, err := s.client.HGet(ctx, s.key, slot).Result()
	if errors.Is(err, redis.Nil) || (err == nil && v == "") {
		return "", sdk.ErrSlotEmpty
	}
	if err != nil {
		return "", fmt.Errorf("redis hget %s: %w", slot, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, slot, value string) error {
	if err := s.client.HSet(ctx, s.key, slot, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", slot, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, slot string) error {
	if err := s.client.HDel(ctx, s.key, slot).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", slot, err)
	}
	return nil
}

// Close releases the redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
