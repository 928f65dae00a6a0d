package state

import (
	"context"
	"errors"
	"time"

	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

// Memory is the read-modify-write view over a Store used by tools and the
// booking flow. Concurrent writers to one thread follow last write wins.
type Memory struct {
	store Store
	clock clock.Clock
}

func NewMemory(store Store, clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.NewRealClock(time.UTC)
	}
	return &Memory{store: store, clock: clk}
}

// Recall returns the thread's state, or a fresh one when nothing is stored.
func (m *Memory) Recall(ctx context.Context, sessionID string) (*SessionState, error) {
	st, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, ErrStateNotFound) {
		return NewSessionState(sessionID, m.clock.Now()), nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (m *Memory) Remember(ctx context.Context, sessionID string, fn func(st *SessionState)) error {
	st, err := m.Recall(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(st)
	st.Touch(m.clock.Now())
	return m.store.Save(ctx, st)
}

func (m *Memory) RememberSlots(ctx context.Context, sessionID string, patch Slots) error {
	return m.Remember(ctx, sessionID, func(st *SessionState) {
		st.Slots.Merge(patch)
	})
}

func (m *Memory) RememberGuest(ctx context.Context, sessionID, guestName string) error {
	return m.RememberSlots(ctx, sessionID, Slots{GuestName: guestName})
}
