package pgstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/motel-concierge/motel"
)

type roomTypeRow struct {
	bun.BaseModel `bun:"table:room_types,alias:rt"`

	RoomType     string  `bun:"room_type,pk"`
	RatePerNight float64 `bun:"rate_per_night,notnull"`
}

type roomRow struct {
	bun.BaseModel `bun:"table:rooms,alias:r"`

	RoomNumber string `bun:"room_number,pk"`
	RoomType   string `bun:"room_type,notnull"`
	Status     string `bun:"status,notnull"`
}

func (r roomRow) toDomain() motel.Room {
	return motel.Room{Number: r.RoomNumber, Type: r.RoomType, Status: r.Status}
}

type bookingRow struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	ID            int64     `bun:"id,pk,autoincrement"`
	GuestName     string    `bun:"guest_name,notnull"`
	RoomNumber    string    `bun:"room_number,notnull"`
	CheckInDate   time.Time `bun:"check_in_date,type:date,notnull"`
	CheckOutDate  time.Time `bun:"check_out_date,type:date,notnull"`
	TotalAmount   float64   `bun:"total_amount,notnull"`
	BookingDate   time.Time `bun:"booking_date,type:date,notnull"`
	BookedAt      time.Time `bun:"booked_at,notnull"`
	BookingSource string    `bun:"booking_source,nullzero"`
}

type ticketRow struct {
	bun.BaseModel `bun:"table:tickets,alias:t"`

	ID                   int64     `bun:"id,pk,autoincrement"`
	RoomNumber           string    `bun:"room_number,notnull"`
	RequestDescription   string    `bun:"request_description,notnull"`
	Status               string    `bun:"status,notnull"`
	AssignedToDepartment string    `bun:"assigned_to_department,notnull"`
	CreatedAt            time.Time `bun:"created_at,notnull"`
}

func (t ticketRow) toDomain() motel.Ticket {
	return motel.Ticket{
		ID:          t.ID,
		RoomNumber:  t.RoomNumber,
		Description: t.RequestDescription,
		Status:      motel.TicketStatus(t.Status),
		Department:  t.AssignedToDepartment,
		CreatedAt:   t.CreatedAt,
	}
}
