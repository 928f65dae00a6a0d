package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

type RedisConfig struct {
	Addr     string `split_words:"true" default:"localhost:6379"`
	Password string `split_words:"true"`
	DB       int    `envconfig:"DB" default:"0"`
}

// RedisStore persists SessionState in a plain Redis server.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	clock     clock.Clock
}

func NewRedisStore(client redis.UniversalClient, opts ...StoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	o, err := buildStoreOptions(opts)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, keyPrefix: o.keyPrefix, ttl: o.ttl, clock: o.clock}, nil
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	key, err := redisKey(s.keyPrefix, sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %w", ErrBackend, key, err)
	}
	return decodeState(raw)
}

func (s *RedisStore) Save(ctx context.Context, st *SessionState) error {
	payload, err := encodeState(st, s.clock.Now())
	if err != nil {
		return err
	}
	key, err := redisKey(s.keyPrefix, st.SessionID)
	if err != nil {
		return err
	}
	// A zero expiration keeps the key forever.
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", ErrBackend, key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := redisKey(s.keyPrefix, sessionID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: redis del %s: %w", ErrBackend, key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", ErrBackend, err)
	}
	return nil
}
