package tool

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/motel/availability"
	"github.com/tanpawarit/motel-concierge/motel/memstore"
	"github.com/tanpawarit/motel-concierge/motel/reporting"
	"github.com/tanpawarit/motel-concierge/motel/reservation"
	"github.com/tanpawarit/motel-concierge/motel/ticketing"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
)

type fixture struct {
	dispatcher *Dispatcher
	store      *memstore.Store
	memory     *statex.Memory
	clock      *clock.MockClock
}

func newFixture(t *testing.T, seed bool) *fixture {
	t.Helper()

	clk := clock.NewMockClock(time.Date(2025, time.August, 10, 9, 0, 0, 0, time.UTC))
	store := memstore.New()
	if seed {
		store.Seed(motel.DevCatalog())
	}
	sessions, err := statex.NewMemoryStore(100, 0, clk)
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	memory := statex.NewMemory(sessions, clk)
	metrics := metricsx.New("test")

	d := NewDispatcher(Deps{
		Availability: availability.New(store, clk),
		Reservations: reservation.New(store, clk, reservation.WithGuestMemory(memory), reservation.WithMetrics(metrics)),
		Tickets:      ticketing.New(store, clk),
		Reports:      reporting.New(store),
		Memory:       memory,
		Clock:        clk,
		Metrics:      metrics,
	})
	return &fixture{dispatcher: d, store: store, memory: memory, clock: clk}
}

func (f *fixture) run(t *testing.T, tool string, args map[string]any) contractx.ToolResult {
	t.Helper()
	return f.dispatcher.Dispatch(context.Background(), "thread-1", tool, args)
}

func expect(t *testing.T, got contractx.ToolResult, wantText string, wantOutcome contractx.Outcome) {
	t.Helper()
	if got.Text != wantText {
		t.Fatalf("text = %q\nwant  %q", got.Text, wantText)
	}
	if got.Outcome != wantOutcome {
		t.Fatalf("outcome = %s, want %s", got.Outcome, wantOutcome)
	}
}

func TestDispatchAvailabilityAndBooking(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	expect(t, f.run(t, ToolCheckAvailability, map[string]any{"check_in_date": "18th August", "check_out_date": "20th August"}),
		"Available rooms between 18th August 2025 and 20th August 2025:\nRoom 101 (Standard), Room 102 (Deluxe), Room 103 (Standard), Room 201 (Suite)",
		contractx.OutcomeOK)

	expect(t, f.run(t, ToolBookRoom, map[string]any{
		"guest_name": "Alice", "room_number": "101", "check_in_date": "2025-08-18", "check_out_date": "2025-08-20",
	}), "Room 101 booked for Alice from 18th August 2025 to 20th August 2025 for $160.00.", contractx.OutcomeOK)

	expect(t, f.run(t, ToolBookRoom, map[string]any{
		"guest_name": "Bob", "room_number": 101, "check_in_date": "August 19", "check_out_date": "August 21",
	}), "Room 101 is already booked between 19th August 2025 and 21st August 2025. Please choose another room or different dates.",
		contractx.OutcomeRejected)

	got := f.run(t, ToolCheckAvailability, map[string]any{"check_in_date": "2025-08-18", "check_out_date": "2025-08-20"})
	if strings.Contains(got.Text, "Room 101") {
		t.Fatalf("room 101 still offered after booking: %q", got.Text)
	}
}

func TestDispatchAcceptsDayFirstDates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	expect(t, f.run(t, ToolCheckAvailability, map[string]any{"check_in_date": "18-08-2025", "check_out_date": "20.08.2025"}),
		"Available rooms between 18th August 2025 and 20th August 2025:\nRoom 101 (Standard), Room 102 (Deluxe), Room 103 (Standard), Room 201 (Suite)",
		contractx.OutcomeOK)
}

func TestDispatchBookingReusesRememberedGuest(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	f.run(t, ToolBookRoom, map[string]any{
		"guest_name": "Alice", "room_number": "101", "check_in_date": "2025-08-18", "check_out_date": "2025-08-20",
	})
	expect(t, f.run(t, ToolBookRoom, map[string]any{
		"room_number": "102", "check_in_date": "2025-08-21", "check_out_date": "2025-08-22",
	}), "Room 102 booked for Alice from 21st August 2025 to 22nd August 2025 for $120.00.", contractx.OutcomeOK)

	st, err := f.memory.Recall(context.Background(), "thread-1")
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	want := statex.Slots{
		GuestName:    "Alice",
		RoomNumber:   "102",
		CheckInDate:  "2025-08-21",
		CheckOutDate: "2025-08-22",
		LastAction:   ToolBookRoom,
	}
	if diff := cmp.Diff(want, st.Slots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchBookingWithoutAnyGuest(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	expect(t, f.run(t, ToolBookRoom, map[string]any{"room_number": "101"}),
		"Guest name is missing. Could you please provide it?", contractx.OutcomeMissingParameter)
	expect(t, f.run(t, ToolBookRoom, map[string]any{"guest_name": "Alice", "room_number": "101", "check_in_date": "2025-08-18"}),
		"Check out date is missing. Could you please provide it?", contractx.OutcomeMissingParameter)
	if len(f.store.Bookings()) != 0 {
		t.Fatalf("bookings = %d, want 0", len(f.store.Bookings()))
	}
}

func TestDispatchDateErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{
			name: "missing check in",
			args: map[string]any{"check_out_date": "2025-08-20"},
			want: "Check in date is missing. Could you please provide it?",
		},
		{
			name: "unparseable",
			args: map[string]any{"check_in_date": "someday", "check_out_date": "2025-08-20"},
			want: invalidDateText,
		},
		{
			name: "past check in",
			args: map[string]any{"check_in_date": "2025-08-01", "check_out_date": "2025-08-20"},
			want: "Check-in date 1st August 2025 is in the past. Please provide a future date.",
		},
		{
			name: "reversed range",
			args: map[string]any{"check_in_date": "2025-08-20", "check_out_date": "2025-08-18"},
			want: "Check-out date must be after check-in date.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := f.run(t, ToolCheckAvailability, tc.args)
			if got.Text != tc.want {
				t.Fatalf("text = %q, want %q", got.Text, tc.want)
			}
			if got.Outcome == contractx.OutcomeOK || got.Outcome == contractx.OutcomeError {
				t.Fatalf("outcome = %s", got.Outcome)
			}
		})
	}
}

func TestDispatchTicketLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	expect(t, f.run(t, ToolRaiseGuestRequest, map[string]any{}),
		"Room number is missing. Could you please provide it?", contractx.OutcomeMissingParameter)
	expect(t, f.run(t, ToolRaiseGuestRequest, map[string]any{"room_number": "101", "request_description": "Extra towels"}),
		"Guest request ticket #1 raised for room 101: Extra towels.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolViewGuestRequests, nil),
		"Ticket #1 - Room 101: Extra towels (Assigned to housekeeping, Created at 10th August 2025)", contractx.OutcomeOK)
	expect(t, f.run(t, ToolCloseGuestRequest, map[string]any{"ticket_id": float64(1)}),
		"Guest request ticket #1 has been successfully closed.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolCloseGuestRequest, map[string]any{"ticket_id": "1"}),
		"Guest request ticket #1 was already closed.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolCloseGuestRequest, map[string]any{"ticket_id": 99}),
		"No ticket found with ID 99.", contractx.OutcomeRejected)
	expect(t, f.run(t, ToolCloseGuestRequest, map[string]any{"ticket_id": "abc"}),
		"Ticket ID must be a number.", contractx.OutcomeRejected)
	expect(t, f.run(t, ToolCloseGuestRequest, map[string]any{"ticket_id": float64(-1)}),
		"Ticket ID must be a number.", contractx.OutcomeRejected)
	expect(t, f.run(t, ToolCloseGuestRequest, map[string]any{"ticket_id": 1e20}),
		"Ticket ID must be a number.", contractx.OutcomeRejected)
	expect(t, f.run(t, ToolCloseGuestRequest, nil),
		"Ticket id is missing. Could you please provide it?", contractx.OutcomeMissingParameter)
	expect(t, f.run(t, ToolViewGuestRequests, nil), "No open guest requests found.", contractx.OutcomeOK)
}

func TestDispatchReports(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	f.run(t, ToolBookRoom, map[string]any{
		"guest_name": "Alice", "room_number": "101", "check_in_date": "2025-08-18", "check_out_date": "2025-08-20",
		"booking_source": "Website",
	})
	f.run(t, ToolBookRoom, map[string]any{
		"guest_name": "Bob", "room_number": "201", "check_in_date": "2025-08-25", "check_out_date": "2025-08-26",
	})

	expect(t, f.run(t, ToolRevenueByDate, map[string]any{"date": "2025-08-10"}),
		"Total revenue on 10th August 2025: $360.00", contractx.OutcomeOK)
	expect(t, f.run(t, ToolRevenueByDate, map[string]any{"date": "2025-08-11"}),
		"No revenue found on 11th August 2025.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolOccupancyRate, map[string]any{"date": "2025-08-19"}),
		"Occupancy rate on 19th August 2025: 25.00%", contractx.OutcomeOK)
	expect(t, f.run(t, ToolTopBookingSource, nil),
		"The top booking source is unspecified with $200.00 in revenue.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolListRoomTypes, nil),
		"Deluxe: $120.00 per night\nStandard: $80.00 per night\nSuite: $200.00 per night", contractx.OutcomeOK)
	expect(t, f.run(t, ToolListBookingSources, nil), "Website\nunspecified", contractx.OutcomeOK)
	expect(t, f.run(t, ToolAllGuests, nil), "Guests:\nAlice, Bob", contractx.OutcomeOK)
	expect(t, f.run(t, ToolRoomDetails, map[string]any{"room_number": "102"}),
		"Room 102: Type - Deluxe, Status - available", contractx.OutcomeOK)
	expect(t, f.run(t, ToolRoomDetails, map[string]any{"room_number": "999"}),
		"No details found for room 999.", contractx.OutcomeRejected)
}

func TestDispatchEmptyMotel(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	expect(t, f.run(t, ToolOccupancyRate, map[string]any{"date": "2025-08-19"}),
		"No rooms registered in the system.", contractx.OutcomeRejected)
	expect(t, f.run(t, ToolTopBookingSource, nil), "No booking data found.", contractx.OutcomeRejected)
	expect(t, f.run(t, ToolListRoomTypes, nil), "No room types found in the system.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolAllGuests, nil), "No guest data found.", contractx.OutcomeOK)
	expect(t, f.run(t, ToolBookRoom, map[string]any{
		"guest_name": "Alice", "room_number": "101", "check_in_date": "2025-08-18", "check_out_date": "2025-08-20",
	}), "No room found with number 101.", contractx.OutcomeRejected)
}

func TestDispatchStoreFailuresBecomeSentences(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	f.store.FailNext(fmt.Errorf("%w: dial tcp 127.0.0.1:5432: connection refused", motel.ErrStoreUnavailable))
	expect(t, f.run(t, ToolViewGuestRequests, nil),
		"The motel database is unavailable right now. Please try again shortly.", contractx.OutcomeError)

	f.store.FailNext(fmt.Errorf("%w: disk full", motel.ErrUnknown))
	got := f.run(t, ToolRevenueByDate, map[string]any{"date": "2025-08-10"})
	if !strings.HasPrefix(got.Text, "Error fetching revenue for 10th August 2025: ") || got.Outcome != contractx.OutcomeError {
		t.Fatalf("result = %+v", got)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	expect(t, f.run(t, "delete_everything", nil), "tool=delete_everything is unavailable", contractx.OutcomeRejected)
}

func TestExecuteKeepsCallIDs(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	out, err := f.dispatcher.Execute(context.Background(), "thread-1", []contractx.ToolRequest{
		{Tool: ToolListRoomTypes, CallID: "a"},
		{Tool: ToolRoomDetails, CallID: "b", Args: map[string]any{"room_number": "101"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got := []string{out[0].CallID, out[1].CallID}
	if diff := cmp.Diff([]string{"a", "b"}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("call ids (-want +got):\n%s", diff)
	}

	st, _ := f.memory.Recall(context.Background(), "thread-1")
	if st.Slots.RoomNumber != "101" || st.Slots.LastAction != ToolRoomDetails {
		t.Fatalf("slots = %+v", st.Slots)
	}
}
