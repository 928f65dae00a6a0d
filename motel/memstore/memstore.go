// Package memstore keeps the motel tables in process memory. It backs local
// development and the service tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/tanpawarit/motel-concierge/motel"
)

type Store struct {
	// txMu serialises booking transactions, which gives the same guarantee as
	// locking the room row.
	txMu sync.Mutex

	mu           sync.RWMutex
	rooms        map[string]motel.Room
	roomOrder    []string
	roomTypes    map[string]motel.RoomType
	bookings     []motel.Booking
	tickets      map[int64]*motel.Ticket
	nextBooking  int64
	nextTicket   int64
	failNextRead error
}

func New() *Store {
	return &Store{
		rooms:     map[string]motel.Room{},
		roomTypes: map[string]motel.RoomType{},
		tickets:   map[int64]*motel.Ticket{},
	}
}

// Seed loads c, replacing rooms and room types with the same key and
// appending bookings.
func (s *Store) Seed(c motel.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range c.RoomTypes {
		s.roomTypes[rt.Name] = rt
	}
	for _, r := range c.Rooms {
		if _, ok := s.rooms[r.Number]; !ok {
			s.roomOrder = append(s.roomOrder, r.Number)
		}
		s.rooms[r.Number] = r
	}
	for _, b := range c.Bookings {
		s.nextBooking++
		b.ID = s.nextBooking
		b.CheckIn, b.CheckOut = motel.Day(b.CheckIn), motel.Day(b.CheckOut)
		s.bookings = append(s.bookings, b)
	}
}

// FailNext makes the next read return err. Used to exercise error paths.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextRead = err
}

func (s *Store) takeFailure() error {
	err := s.failNextRead
	s.failNextRead = nil
	return err
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	mark := len(s.bookings)
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		if len(s.bookings) > mark {
			s.bookings = s.bookings[:mark]
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) LockRoom(_ context.Context, number string) (motel.Room, error) {
	return s.Room(context.Background(), number)
}

func (s *Store) Room(_ context.Context, number string) (motel.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return motel.Room{}, err
	}
	r, ok := s.rooms[number]
	if !ok {
		return motel.Room{}, motel.ErrRoomNotFound
	}
	return r, nil
}

func (s *Store) RateFor(_ context.Context, roomType string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.roomTypes[roomType]
	if !ok {
		return 0, motel.ErrRateNotFound
	}
	return rt.RatePerNight, nil
}

func (s *Store) HasOverlap(_ context.Context, room string, in, out time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.RoomNumber == room && motel.Overlaps(b.CheckIn, b.CheckOut, in, out) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) InsertBooking(_ context.Context, b *motel.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBooking++
	b.ID = s.nextBooking
	s.bookings = append(s.bookings, *b)
	return nil
}

func (s *Store) AvailableRooms(_ context.Context, in, out time.Time) ([]motel.AvailableRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	busy := map[string]bool{}
	for _, b := range s.bookings {
		if motel.Overlaps(b.CheckIn, b.CheckOut, in, out) {
			busy[b.RoomNumber] = true
		}
	}
	var free []motel.AvailableRoom
	for _, n := range s.roomOrder {
		if busy[n] {
			continue
		}
		r := s.rooms[n]
		free = append(free, motel.AvailableRoom{Number: r.Number, Type: r.Type})
	}
	return free, nil
}

func (s *Store) Bookings() []motel.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]motel.Booking(nil), s.bookings...)
}

func (s *Store) InsertTicket(_ context.Context, t *motel.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTicket++
	t.ID = s.nextTicket
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *Store) OpenTickets(_ context.Context) ([]motel.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	var out []motel.Ticket
	for _, t := range s.tickets {
		if t.Status == motel.TicketOpen {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *Store) Ticket(id int64) (motel.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return motel.Ticket{}, false
	}
	return *t, true
}

func (s *Store) CloseTicket(_ context.Context, id int64) (motel.TicketStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return "", motel.ErrTicketNotFound
	}
	prev := t.Status
	t.Status = motel.TicketClosed
	return prev, nil
}

func (s *Store) RevenueOn(_ context.Context, day time.Time) (float64, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return 0, 0, err
	}
	var total float64
	var n int
	for _, b := range s.bookings {
		if motel.Day(b.BookedAt).Equal(day) {
			total += b.TotalAmount
			n++
		}
	}
	return total, n, nil
}

func (s *Store) CountRooms(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms), nil
}

func (s *Store) CountOccupied(_ context.Context, day time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occupied := map[string]bool{}
	for _, b := range s.bookings {
		if !day.Before(b.CheckIn) && !day.After(b.CheckOut) {
			occupied[b.RoomNumber] = true
		}
	}
	return len(occupied), nil
}

func (s *Store) RevenueBySource(_ context.Context) ([]motel.SourceRevenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := map[string]int{}
	var out []motel.SourceRevenue
	for _, b := range s.bookings {
		i, ok := idx[b.Source]
		if !ok {
			i = len(out)
			idx[b.Source] = i
			out = append(out, motel.SourceRevenue{Source: b.Source})
		}
		out[i].Total += b.TotalAmount
	}
	return out, nil
}

func (s *Store) RoomTypes(_ context.Context) ([]motel.RoomType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]motel.RoomType, 0, len(s.roomTypes))
	for _, rt := range s.roomTypes {
		out = append(out, rt)
	}
	return out, nil
}

func (s *Store) BookingSources(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b.Source)
	}
	return out, nil
}

func (s *Store) GuestNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b.GuestName)
	}
	return out, nil
}
