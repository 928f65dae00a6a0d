// Package motel holds the domain types shared by the booking, ticketing and
// reporting services.
package motel

import (
	"math"
	"time"
)

type Room struct {
	Number string
	Type   string
	Status string
}

type RoomType struct {
	Name         string
	RatePerNight float64
}

// Booking is append-only. CheckIn and CheckOut are UTC midnights; the stay
// occupies the half-open range [CheckIn, CheckOut).
type Booking struct {
	ID          int64
	GuestName   string
	RoomNumber  string
	CheckIn     time.Time
	CheckOut    time.Time
	TotalAmount float64
	BookedAt    time.Time
	Source      string
}

func (b Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

const (
	DefaultTicketDescription = "Guest request"
	DefaultDepartment        = "housekeeping"
)

type Ticket struct {
	ID          int64
	RoomNumber  string
	Description string
	Status      TicketStatus
	Department  string
	CreatedAt   time.Time
}

type AvailableRoom struct {
	Number string
	Type   string
}

type SourceRevenue struct {
	Source string
	Total  float64
}

// Revenue is the result of a day's revenue query. Bookings == 0 means no
// booking was made that day, which is different from bookings summing to zero.
type Revenue struct {
	Day      time.Time
	Total    float64
	Bookings int
}

func (r Revenue) Found() bool {
	return r.Bookings > 0
}

type Occupancy struct {
	Day      time.Time
	Occupied int
	Total    int
}

func (o Occupancy) Rate() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Occupied) / float64(o.Total) * 100
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights is the whole number of calendar days between in and out.
func Nights(in, out time.Time) int {
	return int(Day(out).Sub(Day(in)).Hours() / 24)
}

func TotalAmount(rate float64, nights int) float64 {
	return math.Round(rate*float64(nights)*100) / 100
}

// Overlaps reports whether [aIn, aOut) and [bIn, bOut) share at least one night.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}
