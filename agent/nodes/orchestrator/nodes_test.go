package orchestratornode

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

var now = time.Date(2025, time.August, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func TestValidateRequestTrims(t *testing.T) {
	t.Parallel()

	got, err := ValidateRequest(GraphInput{SessionID: " t-1 ", Text: "  rooms?\n"}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if got.SessionID != "t-1" || got.Text != "rooms?" || !got.Now.Equal(now) {
		t.Fatalf("state = %+v", got)
	}

	if _, err := ValidateRequest(GraphInput{Text: "x"}, fixedNow); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("empty session error = %v", err)
	}
	if _, err := ValidateRequest(GraphInput{SessionID: "t-1"}, fixedNow); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("empty message error = %v", err)
	}
}

func TestIsGreeting(t *testing.T) {
	t.Parallel()

	for text, want := range map[string]bool{
		"hi":       true,
		" HI ":     true,
		"Hi":       true,
		"hi there": false,
		"hello":    false,
		"":         false,
		"this":     false,
	} {
		if got := IsGreeting(text); got != want {
			t.Fatalf("IsGreeting(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestLoadOrCreateState(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(now)
	store, err := statex.NewMemoryStore(10, 0, clk)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	ctx := context.Background()

	in := &GraphState{SessionID: "t-1", Text: "rooms?", Now: now}
	got, err := LoadOrCreateState(ctx, in, store)
	if err != nil {
		t.Fatalf("LoadOrCreateState() error = %v", err)
	}
	if got.Session == nil || got.Session.SessionID != "t-1" || len(got.Session.History) != 0 {
		t.Fatalf("fresh session = %+v", got.Session)
	}

	saved := statex.NewSessionState("t-1", now)
	saved.Slots.RoomNumber = "101"
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = LoadOrCreateState(ctx, &GraphState{SessionID: "t-1", Now: now}, store)
	if err != nil {
		t.Fatalf("LoadOrCreateState() error = %v", err)
	}
	if got.Session.Slots.RoomNumber != "101" {
		t.Fatalf("room slot = %q, want 101", got.Session.Slots.RoomNumber)
	}

	if _, err := LoadOrCreateState(ctx, nil, store); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil state error = %v", err)
	}
}

func TestFinalizeReplyRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := FinalizeReply(&GraphState{Message: "   "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("empty reply error = %v", err)
	}
	out, err := FinalizeReply(&GraphState{Message: " done "})
	if err != nil || out.Reply != "done" {
		t.Fatalf("FinalizeReply() = %+v, %v", out, err)
	}
}

func TestWelcomeListsEveryCapability(t *testing.T) {
	t.Parallel()

	st, err := Welcome(&GraphState{SessionID: "t-1", Text: "hi"})
	if err != nil {
		t.Fatalf("Welcome() error = %v", err)
	}
	want := "Hello! I'm here to help you manage the motel. I can check room availability for specific dates, " +
		"book rooms for guests, raise guest requests like extra towels, view open guest requests, " +
		"close guest request tickets, get details about a specific room, list all current guests, " +
		"check revenue for a specific date, calculate occupancy rate for a date, " +
		"find the top booking source by revenue, list all room types and their rates. " +
		"Just tell me what you need, like 'Check availability for next week' or 'List room types.' How can I help you today?"
	if st.Message != want {
		t.Fatalf("welcome =\n%q\nwant\n%q", st.Message, want)
	}
}
