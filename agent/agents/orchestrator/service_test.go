package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
)

type fakeSpecialist struct {
	reply string
	err   error
	// during runs inside the turn, before the orchestrator saves.
	during func(ctx context.Context, req contractx.SpecialistRequest)
	reqs   []contractx.SpecialistRequest
}

func (f *fakeSpecialist) Run(ctx context.Context, req contractx.SpecialistRequest) (contractx.SpecialistResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.during != nil {
		f.during(ctx, req)
	}
	if f.err != nil {
		return contractx.SpecialistResponse{}, f.err
	}
	return contractx.SpecialistResponse{Message: f.reply}, nil
}

type failingStore struct {
	statex.Store
	loadErr error
	saveErr error
}

func (f failingStore) Load(ctx context.Context, sessionID string) (*statex.SessionState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Store.Load(ctx, sessionID)
}

func (f failingStore) Save(ctx context.Context, st *statex.SessionState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.Save(ctx, st)
}

var fixedNow = time.Date(2025, time.August, 10, 9, 0, 0, 0, time.UTC)

func newSessions(t *testing.T, clk clock.Clock) *statex.MemoryStore {
	t.Helper()
	sessions, err := statex.NewMemoryStore(10, 0, clk)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	return sessions
}

func newOrchestrator(t *testing.T, store statex.Store, sp contractx.Specialist, clk clock.Clock) *Orchestrator {
	t.Helper()
	o, err := New(store, sp, Config{HistoryLimit: 4}, WithClock(clk), WithMetrics(metricsx.New("test")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &fakeSpecialist{}, Config{}); err == nil {
		t.Fatal("New(nil store) error = nil")
	}
	clk := clock.NewMockClock(fixedNow)
	if _, err := New(newSessions(t, clk), nil, Config{}); err == nil {
		t.Fatal("New(nil specialist) error = nil")
	}
}

func TestGreetingSkipsSpecialist(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	sessions := newSessions(t, clk)
	sp := &fakeSpecialist{reply: "unused"}
	o := newOrchestrator(t, sessions, sp, clk)

	for _, greeting := range []string{"hi", " Hi ", "HI"} {
		reply, err := o.HandleMessage(context.Background(), "thread-1", greeting)
		if err != nil {
			t.Fatalf("HandleMessage(%q) error = %v", greeting, err)
		}
		if !strings.HasPrefix(reply, "Hello! I'm here to help you manage the motel.") {
			t.Fatalf("reply = %q", reply)
		}
		if !strings.Contains(reply, "check room availability") {
			t.Fatalf("reply does not list capabilities: %q", reply)
		}
	}
	if len(sp.reqs) != 0 {
		t.Fatalf("specialist called %d times, want 0", len(sp.reqs))
	}
	if sessions.Len() != 0 {
		t.Fatalf("sessions stored = %d, want 0", sessions.Len())
	}
}

func TestTurnIsRemembered(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	sessions := newSessions(t, clk)
	sp := &fakeSpecialist{reply: "Room 101 is free."}
	o := newOrchestrator(t, sessions, sp, clk)
	ctx := context.Background()

	reply, err := o.HandleMessage(ctx, "thread-1", "  is 101 free?  ")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "Room 101 is free." {
		t.Fatalf("reply = %q", reply)
	}

	if _, err := o.HandleMessage(ctx, "thread-1", "and 102?"); err != nil {
		t.Fatalf("HandleMessage() second turn error = %v", err)
	}
	if len(sp.reqs) != 2 {
		t.Fatalf("specialist calls = %d, want 2", len(sp.reqs))
	}
	second := sp.reqs[1]
	if second.UserMessage != "and 102?" || !second.Now.Equal(fixedNow) {
		t.Fatalf("second request = %+v", second)
	}
	if got := len(second.Session.History); got != 2 {
		t.Fatalf("history seen by second turn = %d, want 2", got)
	}
	if second.Session.History[0].Content != "is 101 free?" {
		t.Fatalf("first turn content = %q", second.Session.History[0].Content)
	}

	st, err := sessions.Load(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(st.History) != 4 {
		t.Fatalf("stored history = %d, want 4", len(st.History))
	}
	if st.History[3].Role != statex.RoleAssistant {
		t.Fatalf("last role = %s, want assistant", st.History[3].Role)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	sessions := newSessions(t, clk)
	o := newOrchestrator(t, sessions, &fakeSpecialist{reply: "ok"}, clk)

	for i := 0; i < 5; i++ {
		if _, err := o.HandleMessage(context.Background(), "thread-1", "again"); err != nil {
			t.Fatalf("HandleMessage() error = %v", err)
		}
	}
	st, err := sessions.Load(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(st.History) != 4 {
		t.Fatalf("history = %d, want 4", len(st.History))
	}
}

func TestSlotsWrittenDuringTurnSurviveSave(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	sessions := newSessions(t, clk)
	memory := statex.NewMemory(sessions, clk)
	sp := &fakeSpecialist{
		reply: "Booked.",
		during: func(ctx context.Context, req contractx.SpecialistRequest) {
			if err := memory.RememberGuest(ctx, req.SessionID, "Ann"); err != nil {
				t.Errorf("RememberGuest() error = %v", err)
			}
		},
	}
	o := newOrchestrator(t, sessions, sp, clk)

	if _, err := o.HandleMessage(context.Background(), "thread-1", "book 101 for Ann"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	st, err := sessions.Load(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.Slots.GuestName != "Ann" {
		t.Fatalf("guest slot = %q, want Ann", st.Slots.GuestName)
	}
	if len(st.History) != 2 {
		t.Fatalf("history = %d, want 2", len(st.History))
	}
}

func TestInvalidRequests(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	o := newOrchestrator(t, newSessions(t, clk), &fakeSpecialist{reply: "ok"}, clk)

	tests := []struct {
		name      string
		sessionID string
		message   string
		want      error
	}{
		{name: "empty session", sessionID: " ", message: "hello", want: ErrInvalidSession},
		{name: "empty message", sessionID: "thread-1", message: "\n", want: ErrInvalidMessage},
	}
	for _, tt := range tests {
		_, err := o.Ask(context.Background(), contractx.ChatRequest{SessionID: tt.sessionID, Message: tt.message})
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
		if !IsInvalidRequest(err) {
			t.Fatalf("%s: IsInvalidRequest() = false", tt.name)
		}
	}
}

func TestSpecialistFailureIsNotSaved(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	sessions := newSessions(t, clk)
	sp := &fakeSpecialist{err: contractx.ErrModelInvoke}
	o := newOrchestrator(t, sessions, sp, clk)

	_, err := o.Ask(context.Background(), contractx.ChatRequest{SessionID: "thread-1", Message: "book a room"})
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Ask() error = %v, want ErrModelInvoke", err)
	}
	if IsInvalidRequest(err) {
		t.Fatal("model failure reported as invalid request")
	}
	if _, err := sessions.Load(context.Background(), "thread-1"); !errors.Is(err, statex.ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestStoreFailures(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	boom := errors.New("redis down")

	o := newOrchestrator(t, failingStore{Store: newSessions(t, clk), loadErr: boom}, &fakeSpecialist{reply: "ok"}, clk)
	if _, err := o.HandleMessage(context.Background(), "thread-1", "rooms?"); !errors.Is(err, boom) {
		t.Fatalf("load failure error = %v, want %v", err, boom)
	}

	o = newOrchestrator(t, failingStore{Store: newSessions(t, clk), saveErr: boom}, &fakeSpecialist{reply: "ok"}, clk)
	if _, err := o.HandleMessage(context.Background(), "thread-1", "rooms?"); !errors.Is(err, boom) {
		t.Fatalf("save failure error = %v, want %v", err, boom)
	}
}

func TestAskReturnsReplyWithoutVideo(t *testing.T) {
	t.Parallel()

	clk := clock.NewMockClock(fixedNow)
	o := newOrchestrator(t, newSessions(t, clk), &fakeSpecialist{reply: "Room 101 booked."}, clk)

	resp, err := o.Ask(context.Background(), contractx.ChatRequest{SessionID: "thread-1", Message: "book 101"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Text != "Room 101 booked." || resp.VideoURL != nil {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestConfigLocation(t *testing.T) {
	t.Parallel()

	if got := (Config{TimeZone: "Local"}).Location(); got != time.Local {
		t.Fatalf("Local location = %v", got)
	}
	if got := (Config{TimeZone: "Not/AZone"}).Location(); got != time.Local {
		t.Fatalf("bad zone location = %v, want Local", got)
	}
	if got := (Config{TimeZone: "UTC"}).Location(); got.String() != "UTC" {
		t.Fatalf("UTC location = %v", got)
	}
}
