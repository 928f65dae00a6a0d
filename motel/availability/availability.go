package availability

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

// Store returns every room without a booking overlapping [in, out).
type Store interface {
	AvailableRooms(ctx context.Context, in, out time.Time) ([]motel.AvailableRoom, error)
}

type Engine struct {
	store Store
	clock clock.Clock
}

func New(store Store, clk clock.Clock) *Engine {
	return &Engine{store: store, clock: clk}
}

// FindAvailable lists free rooms for the stay sorted by room number. An empty
// result is not an error.
func (e *Engine) FindAvailable(ctx context.Context, in, out time.Time) ([]motel.AvailableRoom, error) {
	in, out = motel.Day(in), motel.Day(out)
	if err := motel.ValidateStay(in, out, e.clock.Now()); err != nil {
		return nil, err
	}

	rooms, err := e.store.AvailableRooms(ctx, in, out)
	if err != nil {
		return nil, fmt.Errorf("find available rooms: %w", err)
	}
	SortRooms(rooms)
	return rooms, nil
}

// SortRooms orders by room number, numerically when both numbers are integers.
func SortRooms(rooms []motel.AvailableRoom) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return LessRoomNumber(rooms[i].Number, rooms[j].Number)
	})
}

func LessRoomNumber(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
