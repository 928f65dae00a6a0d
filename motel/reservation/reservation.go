package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
)

// Store is the transactional surface booking needs. Every method other than
// WithinTx must be called with the ctx handed to fn so it joins the transaction.
type Store interface {
	// WithinTx runs fn in one transaction that serialises bookings per room.
	// fn may be invoked more than once when the store retries a conflict.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockRoom(ctx context.Context, number string) (motel.Room, error)
	RateFor(ctx context.Context, roomType string) (float64, error)
	HasOverlap(ctx context.Context, room string, in, out time.Time) (bool, error)
	InsertBooking(ctx context.Context, b *motel.Booking) error
}

// GuestMemory records the last guest name booked in a conversation thread.
type GuestMemory interface {
	RememberGuest(ctx context.Context, threadID, guestName string) error
}

type BookRequest struct {
	ThreadID   string
	GuestName  string
	RoomNumber string
	CheckIn    time.Time
	CheckOut   time.Time
	Source     string
}

type Service struct {
	store   Store
	memory  GuestMemory
	clock   clock.Clock
	metrics *metricsx.Metrics
}

type Option func(*Service)

func WithGuestMemory(m GuestMemory) Option {
	return func(s *Service) { s.memory = m }
}

func WithMetrics(m *metricsx.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, clk clock.Clock, opts ...Option) *Service {
	s := &Service{store: store, clock: clk}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book validates the request, then checks for an overlapping stay and inserts
// the booking inside a single store transaction. The insert is the commit
// point: nothing after it can undo the booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (motel.Booking, error) {
	guest := strings.TrimSpace(req.GuestName)
	roomNumber := strings.TrimSpace(req.RoomNumber)
	if err := motel.Require("guest_name", guest, "room_number", roomNumber); err != nil {
		return motel.Booking{}, err
	}

	in, out := motel.Day(req.CheckIn), motel.Day(req.CheckOut)
	if err := motel.ValidateStay(in, out, s.clock.Now()); err != nil {
		return motel.Booking{}, err
	}

	var booking motel.Booking
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		room, err := s.store.LockRoom(ctx, roomNumber)
		if err != nil {
			return err
		}
		rate, err := s.store.RateFor(ctx, room.Type)
		if err != nil {
			return err
		}
		conflict, err := s.store.HasOverlap(ctx, room.Number, in, out)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: room %s is booked between %s and %s",
				motel.ErrRoomUnavailable, room.Number, in.Format(time.DateOnly), out.Format(time.DateOnly))
		}

		booking = motel.Booking{
			GuestName:   guest,
			RoomNumber:  room.Number,
			CheckIn:     in,
			CheckOut:    out,
			TotalAmount: motel.TotalAmount(rate, motel.Nights(in, out)),
			BookedAt:    s.clock.Now(),
			Source:      strings.TrimSpace(req.Source),
		}
		return s.store.InsertBooking(ctx, &booking)
	})
	if err != nil {
		s.metrics.ObserveBooking(bookingResult(err))
		return motel.Booking{}, err
	}
	s.metrics.ObserveBooking("ok")

	if s.memory != nil && strings.TrimSpace(req.ThreadID) != "" {
		if err := s.memory.RememberGuest(ctx, req.ThreadID, booking.GuestName); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("thread_id", req.ThreadID).
				Int64("booking_id", booking.ID).
				Msg("remember guest after booking")
		}
	}

	return booking, nil
}

func bookingResult(err error) string {
	switch {
	case errors.Is(err, motel.ErrRoomUnavailable):
		return "conflict"
	case errors.Is(err, motel.ErrBusy):
		return "busy"
	case errors.Is(err, motel.ErrRoomNotFound), errors.Is(err, motel.ErrRateNotFound):
		return "rejected"
	default:
		return "error"
	}
}
