package ticketing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

type Store interface {
	// InsertTicket stores t and fills in its ID.
	InsertTicket(ctx context.Context, t *motel.Ticket) error
	OpenTickets(ctx context.Context) ([]motel.Ticket, error)
	// CloseTicket marks the ticket closed and returns the status it had before.
	CloseTicket(ctx context.Context, id int64) (motel.TicketStatus, error)
}

type Service struct {
	store Store
	clock clock.Clock
}

func New(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk}
}

func (s *Service) Raise(ctx context.Context, roomNumber, description string) (motel.Ticket, error) {
	roomNumber = strings.TrimSpace(roomNumber)
	if err := motel.Require("room_number", roomNumber); err != nil {
		return motel.Ticket{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = motel.DefaultTicketDescription
	}

	t := motel.Ticket{
		RoomNumber:  roomNumber,
		Description: description,
		Status:      motel.TicketOpen,
		Department:  motel.DefaultDepartment,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.InsertTicket(ctx, &t); err != nil {
		return motel.Ticket{}, fmt.Errorf("raise ticket for room %s: %w", roomNumber, err)
	}
	if t.ID <= 0 {
		return motel.Ticket{}, fmt.Errorf("%w: ticket for room %s was stored but its id could not be read back", motel.ErrUnknown, roomNumber)
	}
	return t, nil
}

// ListOpen returns open tickets, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]motel.Ticket, error) {
	tickets, err := s.store.OpenTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open tickets: %w", err)
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})
	return tickets, nil
}

type CloseResult struct {
	ID            int64
	AlreadyClosed bool
}

// Close is idempotent: closing a closed ticket succeeds with AlreadyClosed set.
// An unknown id fails with ErrTicketNotFound and changes nothing.
func (s *Service) Close(ctx context.Context, id int64) (CloseResult, error) {
	if id <= 0 {
		return CloseResult{}, motel.Missing("ticket_id")
	}
	prev, err := s.store.CloseTicket(ctx, id)
	if err != nil {
		return CloseResult{}, err
	}
	return CloseResult{ID: id, AlreadyClosed: prev == motel.TicketClosed}, nil
}
