package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SessionState is what the concierge remembers about one conversation thread.
type SessionState struct {
	SessionID string    `json:"session_id"`
	Slots     Slots     `json:"slots"`
	History   []Turn    `json:"history,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slots hold the last values mentioned in the thread. Tools read them as
// defaults and write them after a successful call.
type Slots struct {
	GuestName    string `json:"guest_name,omitempty"`
	RoomNumber   string `json:"room_number,omitempty"`
	CheckInDate  string `json:"check_in_date,omitempty"`
	CheckOutDate string `json:"check_out_date,omitempty"`
	LastAction   string `json:"last_action,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn adds a turn and keeps at most limit turns, dropping the oldest.
// A limit <= 0 keeps everything.
func (s *SessionState) AppendTurn(role Role, content string, at time.Time, limit int) {
	s.History = append(s.History, Turn{Role: role, Content: content, At: at.UTC()})
	if limit > 0 && len(s.History) > limit {
		s.History = append([]Turn(nil), s.History[len(s.History)-limit:]...)
	}
}

// Merge overlays non-empty slot values from patch.
func (sl *Slots) Merge(patch Slots) {
	if patch.GuestName != "" {
		sl.GuestName = patch.GuestName
	}
	if patch.RoomNumber != "" {
		sl.RoomNumber = patch.RoomNumber
	}
	if patch.CheckInDate != "" {
		sl.CheckInDate = patch.CheckInDate
	}
	if patch.CheckOutDate != "" {
		sl.CheckOutDate = patch.CheckOutDate
	}
	if patch.LastAction != "" {
		sl.LastAction = patch.LastAction
	}
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	for i, t := range s.History {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			return fmt.Errorf("history turn %d has unknown role %q", i, t.Role)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching a cached value.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	cp := *s
	cp.History = append([]Turn(nil), s.History...)
	return &cp
}
