package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

const maxUpstashResponseBytes = 2 << 20

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashRedisStore keeps sessions in Upstash Redis through its REST API.
// Each call is one POSTed command such as ["SET", key, value, "EX", 60].
type UpstashRedisStore struct {
	endpoint   string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
	clock      clock.Clock
}

type upstashReply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if endpoint == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid upstash redis url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	o, err := buildStoreOptions(opts)
	if err != nil {
		return nil, err
	}
	if o.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		o.httpClient = &http.Client{Timeout: timeout}
	}

	return &UpstashRedisStore{
		endpoint:   endpoint,
		token:      token,
		httpClient: o.httpClient,
		keyPrefix:  o.keyPrefix,
		ttl:        o.ttl,
		clock:      o.clock,
	}, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	key, err := redisKey(s.keyPrefix, sessionID)
	if err != nil {
		return nil, err
	}
	result, err := s.command(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrStateNotFound
	}

	// GET returns the stored JSON document as a JSON string.
	var stored string
	if err := json.Unmarshal(result, &stored); err != nil {
		return nil, fmt.Errorf("decode upstash value for %s: %w", key, err)
	}
	return decodeState([]byte(stored))
}

func (s *UpstashRedisStore) Save(ctx context.Context, st *SessionState) error {
	payload, err := encodeState(st, s.clock.Now())
	if err != nil {
		return err
	}
	key, err := redisKey(s.keyPrefix, st.SessionID)
	if err != nil {
		return err
	}

	args := []any{"SET", key, string(payload)}
	if s.ttl > 0 {
		args = append(args, "EX", ttlSeconds(s.ttl))
	}
	_, err = s.command(ctx, args...)
	return err
}

func (s *UpstashRedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := redisKey(s.keyPrefix, sessionID)
	if err != nil {
		return err
	}
	_, err = s.command(ctx, "DEL", key)
	return err
}

func (s *UpstashRedisStore) Ping(ctx context.Context) error {
	_, err := s.command(ctx, "PING")
	return err
}

// command runs one Redis command and returns its raw result. Transport,
// status and Redis-level failures are all marked ErrBackend.
func (s *UpstashRedisStore) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal upstash command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstash request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: upstash %v: %w", ErrBackend, args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstashResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read upstash response: %w", ErrBackend, err)
	}

	var reply upstashReply
	if err := json.Unmarshal(raw, &reply); err != nil && resp.StatusCode < http.StatusMultipleChoices {
		return nil, fmt.Errorf("decode upstash response: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: upstash %v: %s", ErrBackend, args[0], reply.Error)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: upstash %v: status %d", ErrBackend, args[0], resp.StatusCode)
	}
	return bytes.TrimSpace(reply.Result), nil
}
