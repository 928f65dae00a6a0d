package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/dates"
)

func (s *Store) RevenueOn(ctx context.Context, day time.Time) (float64, int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, 0, err
	}
	var (
		total float64
		n     int
	)
	err := s.idb(ctx).NewSelect().
		Model((*bookingRow)(nil)).
		ColumnExpr("COALESCE(SUM(b.total_amount), 0)").
		ColumnExpr("COUNT(*)").
		Where("b.booking_date = ?::date", dates.ISO(day)).
		Scan(ctx, &total, &n)
	if err != nil {
		return 0, 0, classify(err, "revenue on "+dates.ISO(day))
	}
	return total, n, nil
}

func (s *Store) CountRooms(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	n, err := s.idb(ctx).NewSelect().Model((*roomRow)(nil)).Count(ctx)
	if err != nil {
		return 0, classify(err, "count rooms")
	}
	return n, nil
}

func (s *Store) CountOccupied(ctx context.Context, day time.Time) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	err := s.idb(ctx).NewSelect().
		Model((*bookingRow)(nil)).
		ColumnExpr("COUNT(DISTINCT b.room_number)").
		Where("?::date BETWEEN b.check_in_date AND b.check_out_date", dates.ISO(day)).
		Scan(ctx, &n)
	if err != nil {
		return 0, classify(err, "count occupied on "+dates.ISO(day))
	}
	return n, nil
}

func (s *Store) RevenueBySource(ctx context.Context) ([]motel.SourceRevenue, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rows []struct {
		Source string  `bun:"source"`
		Total  float64 `bun:"total"`
	}
	err := s.idb(ctx).NewSelect().
		Model((*bookingRow)(nil)).
		ColumnExpr("COALESCE(b.booking_source, '') AS source").
		ColumnExpr("SUM(b.total_amount) AS total").
		GroupExpr("COALESCE(b.booking_source, '')").
		Scan(ctx, &rows)
	if err != nil {
		return nil, classify(err, "revenue by source")
	}
	out := make([]motel.SourceRevenue, 0, len(rows))
	for _, r := range rows {
		out = append(out, motel.SourceRevenue{Source: r.Source, Total: r.Total})
	}
	return out, nil
}

func (s *Store) RoomTypes(ctx context.Context) ([]motel.RoomType, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var rows []roomTypeRow
	if err := s.idb(ctx).NewSelect().Model(&rows).Order("rt.room_type").Scan(ctx); err != nil {
		return nil, classify(err, "room types")
	}
	out := make([]motel.RoomType, 0, len(rows))
	for _, r := range rows {
		out = append(out, motel.RoomType{Name: r.RoomType, RatePerNight: r.RatePerNight})
	}
	return out, nil
}

func (s *Store) BookingSources(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var sources []string
	err := s.idb(ctx).NewSelect().
		Model((*bookingRow)(nil)).
		ColumnExpr("COALESCE(b.booking_source, '')").
		Order("b.id").
		Scan(ctx, &sources)
	if err != nil {
		return nil, classify(err, "booking sources")
	}
	return sources, nil
}

func (s *Store) Room(ctx context.Context, number string) (motel.Room, error) {
	if err := s.ready(ctx); err != nil {
		return motel.Room{}, err
	}
	var row roomRow
	err := s.idb(ctx).NewSelect().Model(&row).Where("r.room_number = ?", number).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return motel.Room{}, motel.ErrRoomNotFound
	}
	if err != nil {
		return motel.Room{}, classify(err, "room "+number)
	}
	return row.toDomain(), nil
}

func (s *Store) GuestNames(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var names []string
	err := s.idb(ctx).NewSelect().
		Model((*bookingRow)(nil)).
		ColumnExpr("DISTINCT b.guest_name").
		Order("b.guest_name").
		Scan(ctx, &names)
	if err != nil {
		return nil, classify(err, "guest names")
	}
	return names, nil
}
