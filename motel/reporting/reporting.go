package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tanpawarit/motel-concierge/motel"
)

// Store is read-only. None of its queries need more than read-committed isolation.
type Store interface {
	// RevenueOn sums total_amount of bookings made on day and counts them.
	RevenueOn(ctx context.Context, day time.Time) (float64, int, error)
	CountRooms(ctx context.Context) (int, error)
	// CountOccupied counts distinct rooms with a booking where
	// check_in <= day <= check_out.
	CountOccupied(ctx context.Context, day time.Time) (int, error)
	RevenueBySource(ctx context.Context) ([]motel.SourceRevenue, error)
	RoomTypes(ctx context.Context) ([]motel.RoomType, error)
	// BookingSources returns the source of every booking in storage order.
	BookingSources(ctx context.Context) ([]string, error)
	Room(ctx context.Context, number string) (motel.Room, error)
	GuestNames(ctx context.Context) ([]string, error)
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) RevenueOn(ctx context.Context, day time.Time) (motel.Revenue, error) {
	day = motel.Day(day)
	total, n, err := s.store.RevenueOn(ctx, day)
	if err != nil {
		return motel.Revenue{}, fmt.Errorf("revenue on %s: %w", day.Format(time.DateOnly), err)
	}
	return motel.Revenue{Day: day, Total: total, Bookings: n}, nil
}

// OccupancyOn counts a room as occupied on both its check-in and check-out day.
func (s *Service) OccupancyOn(ctx context.Context, day time.Time) (motel.Occupancy, error) {
	day = motel.Day(day)
	total, err := s.store.CountRooms(ctx)
	if err != nil {
		return motel.Occupancy{}, fmt.Errorf("count rooms: %w", err)
	}
	if total == 0 {
		return motel.Occupancy{}, motel.ErrNoRoomsRegistered
	}
	occupied, err := s.store.CountOccupied(ctx, day)
	if err != nil {
		return motel.Occupancy{}, fmt.Errorf("count occupied rooms on %s: %w", day.Format(time.DateOnly), err)
	}
	return motel.Occupancy{Day: day, Occupied: occupied, Total: total}, nil
}

// TopBookingSource returns the source with the highest summed revenue. Equal
// totals go to the lexicographically smaller source name.
func (s *Service) TopBookingSource(ctx context.Context) (motel.SourceRevenue, error) {
	sources, err := s.store.RevenueBySource(ctx)
	if err != nil {
		return motel.SourceRevenue{}, fmt.Errorf("revenue by source: %w", err)
	}
	if len(sources) == 0 {
		return motel.SourceRevenue{}, motel.ErrNoBookings
	}

	top := sources[0]
	for _, sr := range sources[1:] {
		if sr.Total > top.Total || (sr.Total == top.Total && sr.Source < top.Source) {
			top = sr
		}
	}
	return top, nil
}

func (s *Service) ListRoomTypes(ctx context.Context) ([]motel.RoomType, error) {
	types, err := s.store.RoomTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	sort.SliceStable(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

// ListBookingSources keeps duplicates and storage order.
func (s *Service) ListBookingSources(ctx context.Context) ([]string, error) {
	sources, err := s.store.BookingSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list booking sources: %w", err)
	}
	return sources, nil
}

func (s *Service) RoomDetails(ctx context.Context, number string) (motel.Room, error) {
	number = strings.TrimSpace(number)
	if err := motel.Require("room_number", number); err != nil {
		return motel.Room{}, err
	}
	return s.store.Room(ctx, number)
}

// ListGuests returns each guest name once, sorted.
func (s *Service) ListGuests(ctx context.Context) ([]string, error) {
	names, err := s.store.GuestNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
