package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendUpstash = "upstash"
)

type Config struct {
	Backend   string        `split_words:"true" default:"memory"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
	Capacity  int           `split_words:"true" default:"1000"`
	KeyPrefix string        `split_words:"true" default:"motel:session:"`

	Redis   RedisConfig
	Upstash UpstashRedisConfig
}

func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendMemory, BackendRedis, BackendUpstash:
	default:
		return fmt.Errorf("unknown session backend %q", c.Backend)
	}
	if c.TTL < 0 {
		return fmt.Errorf("session ttl must be >= 0")
	}
	return nil
}

// Open builds the configured backend. The returned close func is never nil.
func Open(ctx context.Context, cfg Config, clk clock.Clock) (Store, func() error, error) {
	noop := func() error { return nil }
	opts := []StoreOption{WithKeyPrefix(cfg.KeyPrefix), WithTTL(cfg.TTL), WithClock(clk)}

	switch cfg.Backend {
	case BackendRedis:
		client := NewRedisClient(cfg.Redis)
		store, err := NewRedisStore(client, opts...)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable at startup")
		}
		return store, client.Close, nil
	case BackendUpstash:
		store, err := NewUpstashRedisStore(cfg.Upstash, opts...)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		store, err := NewMemoryStore(cfg.Capacity, cfg.TTL, clk)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}
}
