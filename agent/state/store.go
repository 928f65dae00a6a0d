package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

const (
	defaultStoreKeyPrefix = "motel:session:"
	defaultStoreTTL       = 24 * time.Hour
)

// ErrBackend marks failures talking to a remote session backend.
var ErrBackend = errors.New("session backend unavailable")

// Store persists one SessionState per conversation thread. Load returns
// ErrStateNotFound for unknown or expired threads.
type Store interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, st *SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// StoreOption customizes the remote stores.
type StoreOption func(*storeOptions)

type storeOptions struct {
	keyPrefix  string
	ttl        time.Duration
	httpClient *http.Client
	clock      clock.Clock
}

func buildStoreOptions(opts []StoreOption) (storeOptions, error) {
	o := storeOptions{keyPrefix: defaultStoreKeyPrefix, ttl: defaultStoreTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.ttl < 0 {
		return o, errors.New("ttl must be >= 0")
	}
	if o.clock == nil {
		o.clock = clock.NewRealClock(time.UTC)
	}
	return o, nil
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			o.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

// WithClock sets the clock used to stamp UpdatedAt on save.
func WithClock(c clock.Clock) StoreOption {
	return func(o *storeOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithHTTPClient only affects UpstashRedisStore.
func WithHTTPClient(client *http.Client) StoreOption {
	return func(o *storeOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func redisKey(prefix, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return strings.TrimSpace(prefix) + sessionID, nil
}

func encodeState(st *SessionState, now time.Time) ([]byte, error) {
	if st == nil {
		return nil, ErrNilSessionState
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return nil, ErrInvalidSession
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now.UTC()
	} else {
		st.UpdatedAt = st.UpdatedAt.UTC()
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal session state: %w", err)
	}
	return payload, nil
}

func decodeState(raw []byte) (*SessionState, error) {
	var state SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session state loaded from store: %w", err)
	}
	return &state, nil
}

// ttlSeconds rounds up so a sub-second TTL never becomes "no expiry".
func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if ttl%time.Second != 0 {
		seconds++
	}
	if seconds <= 0 {
		return 1
	}
	return int64(seconds)
}
