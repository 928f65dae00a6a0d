package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/dates"
)

// LockRoom reads the room with FOR UPDATE so concurrent bookings of the same
// room queue behind each other until lock_timeout.
func (s *Store) LockRoom(ctx context.Context, number string) (motel.Room, error) {
	var row roomRow
	err := s.idb(ctx).NewSelect().
		Model(&row).
		Where("r.room_number = ?", number).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return motel.Room{}, motel.ErrRoomNotFound
	}
	if err != nil {
		return motel.Room{}, classify(err, "lock room "+number)
	}
	return row.toDomain(), nil
}

func (s *Store) RateFor(ctx context.Context, roomType string) (float64, error) {
	var rate float64
	err := s.idb(ctx).NewSelect().
		Model((*roomTypeRow)(nil)).
		Column("rate_per_night").
		Where("rt.room_type = ?", roomType).
		Scan(ctx, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, motel.ErrRateNotFound
	}
	if err != nil {
		return 0, classify(err, "rate for "+roomType)
	}
	return rate, nil
}

func (s *Store) HasOverlap(ctx context.Context, room string, in, out time.Time) (bool, error) {
	exists, err := s.idb(ctx).NewSelect().
		Model((*bookingRow)(nil)).
		Where("b.room_number = ?", room).
		Where("b.check_in_date < ?::date", dates.ISO(out)).
		Where("b.check_out_date > ?::date", dates.ISO(in)).
		Exists(ctx)
	if err != nil {
		return false, classify(err, "check overlap for room "+room)
	}
	return exists, nil
}

func (s *Store) InsertBooking(ctx context.Context, b *motel.Booking) error {
	return insertBooking(ctx, s.idb(ctx), b)
}

func insertBooking(ctx context.Context, db bun.IDB, b *motel.Booking) error {
	bookedAt := b.BookedAt
	if bookedAt.IsZero() {
		bookedAt = time.Now()
	}
	row := bookingRow{
		GuestName:     b.GuestName,
		RoomNumber:    b.RoomNumber,
		TotalAmount:   b.TotalAmount,
		BookedAt:      bookedAt,
		BookingSource: b.Source,
	}
	_, err := db.NewInsert().
		Model(&row).
		Value("check_in_date", "?::date", dates.ISO(b.CheckIn)).
		Value("check_out_date", "?::date", dates.ISO(b.CheckOut)).
		Value("booking_date", "?::date", dates.ISO(bookedAt)).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return classify(err, "insert booking for room "+b.RoomNumber)
	}
	b.ID = row.ID
	b.BookedAt = bookedAt
	return nil
}

func (s *Store) AvailableRooms(ctx context.Context, in, out time.Time) ([]motel.AvailableRoom, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rows []roomRow
	err := s.idb(ctx).NewSelect().
		Model(&rows).
		Where(`NOT EXISTS (
			SELECT 1 FROM bookings AS b
			WHERE b.room_number = r.room_number
			  AND b.check_in_date < ?::date
			  AND b.check_out_date > ?::date)`, dates.ISO(out), dates.ISO(in)).
		Order("r.room_number").
		Scan(ctx)
	if err != nil {
		return nil, classify(err, "available rooms")
	}
	free := make([]motel.AvailableRoom, 0, len(rows))
	for _, r := range rows {
		free = append(free, motel.AvailableRoom{Number: r.RoomNumber, Type: r.RoomType})
	}
	return free, nil
}
