package state

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

const defaultMemoryCapacity = 1000

// MemoryStore keeps sessions in process. It holds at most capacity threads,
// evicting the least recently used, and forgets a thread ttl after its last save.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    clock.Clock
	order    *list.List
	entries  map[string]*list.Element
}

type memoryEntry struct {
	sessionID string
	payload   *SessionState
	expiresAt time.Time
}

func NewMemoryStore(capacity int, ttl time.Duration, clk clock.Clock) (*MemoryStore, error) {
	if ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	if clk == nil {
		clk = clock.NewRealClock(time.UTC)
	}
	return &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		clock:    clk,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}, nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*SessionState, error) {
	if _, err := redisKey("", sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	entry := el.Value.(*memoryEntry)
	if s.expired(entry) {
		s.remove(el)
		return nil, ErrStateNotFound
	}
	s.order.MoveToFront(el)
	return entry.payload.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, st *SessionState) error {
	if st == nil {
		return ErrNilSessionState
	}
	if err := st.Validate(); err != nil {
		return err
	}
	now := s.clock.Now()
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now.UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{sessionID: st.SessionID, payload: st.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	if el, ok := s.entries[st.SessionID]; ok {
		el.Value = entry
		s.order.MoveToFront(el)
		return nil
	}
	s.entries[st.SessionID] = s.order.PushFront(entry)
	for s.order.Len() > s.capacity {
		s.remove(s.order.Back())
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if _, err := redisKey("", sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[sessionID]; ok {
		s.remove(el)
	}
	return nil
}

// Len reports the number of live and not yet collected threads.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore) expired(e *memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt)
}

func (s *MemoryStore) remove(el *list.Element) {
	s.order.Remove(el)
	delete(s.entries, el.Value.(*memoryEntry).sessionID)
}
