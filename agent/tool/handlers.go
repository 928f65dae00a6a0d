package tool

import (
	"context"
	"fmt"
	"strings"

	statex "github.com/tanpawarit/motel-concierge/agent/state"
	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/motel/reservation"
	"github.com/tanpawarit/motel-concierge/pkg/dates"
)

func (d *Dispatcher) checkAvailability(ctx context.Context, c *call) (string, error) {
	in, out, err := c.stay()
	if err != nil {
		return "", err
	}
	rooms, err := d.deps.Availability.FindAvailable(ctx, in, out)
	if err != nil {
		return "", err
	}
	c.slots.CheckInDate, c.slots.CheckOutDate = dates.ISO(in), dates.ISO(out)

	if len(rooms) == 0 {
		return fmt.Sprintf("No rooms available between %s and %s.", dates.Format(in), dates.Format(out)), nil
	}
	list := make([]string, 0, len(rooms))
	for _, r := range rooms {
		list = append(list, fmt.Sprintf("Room %s (%s)", r.Number, r.Type))
	}
	return fmt.Sprintf("Available rooms between %s and %s:\n%s",
		dates.Format(in), dates.Format(out), strings.Join(list, ", ")), nil
}

func (d *Dispatcher) bookRoom(ctx context.Context, c *call) (string, error) {
	guest := c.args.String("guest_name")
	if guest == "" && d.deps.Memory != nil && c.sessionID != "" {
		if st, err := d.deps.Memory.Recall(ctx, c.sessionID); err == nil {
			guest = st.Slots.GuestName
		}
	}
	c.room = c.args.String("room_number")
	if err := motel.Require("guest_name", guest, "room_number", c.room); err != nil {
		return "", err
	}
	in, out, err := c.stay()
	if err != nil {
		return "", err
	}

	booking, err := d.deps.Reservations.Book(ctx, reservation.BookRequest{
		ThreadID:   c.sessionID,
		GuestName:  guest,
		RoomNumber: c.room,
		CheckIn:    in,
		CheckOut:   out,
		Source:     c.args.String("booking_source"),
	})
	if err != nil {
		return "", err
	}
	c.slots = statex.Slots{
		RoomNumber:   booking.RoomNumber,
		CheckInDate:  dates.ISO(booking.CheckIn),
		CheckOutDate: dates.ISO(booking.CheckOut),
	}
	return fmt.Sprintf("Room %s booked for %s from %s to %s for $%.2f.",
		booking.RoomNumber, booking.GuestName, dates.Format(booking.CheckIn), dates.Format(booking.CheckOut), booking.TotalAmount), nil
}

func (d *Dispatcher) raiseRequest(ctx context.Context, c *call) (string, error) {
	c.room = c.args.String("room_number")
	t, err := d.deps.Tickets.Raise(ctx, c.room, c.args.String("request_description"))
	if err != nil {
		return "", err
	}
	c.slots.RoomNumber = t.RoomNumber
	return fmt.Sprintf("Guest request ticket #%d raised for room %s: %s.", t.ID, t.RoomNumber, t.Description), nil
}

func (d *Dispatcher) viewRequests(ctx context.Context, _ *call) (string, error) {
	tickets, err := d.deps.Tickets.ListOpen(ctx)
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return "No open guest requests found.", nil
	}
	lines := make([]string, 0, len(tickets))
	for _, t := range tickets {
		lines = append(lines, fmt.Sprintf("Ticket #%d - Room %s: %s (Assigned to %s, Created at %s)",
			t.ID, t.RoomNumber, t.Description, t.Department, dates.Format(t.CreatedAt)))
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) closeRequest(ctx context.Context, c *call) (string, error) {
	id, ok, err := c.args.Int("ticket_id")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBadArgument, err)
	}
	if !ok {
		return "", motel.Missing("ticket_id")
	}
	c.ticketID = id
	res, err := d.deps.Tickets.Close(ctx, id)
	if err != nil {
		return "", err
	}
	if res.AlreadyClosed {
		return fmt.Sprintf("Guest request ticket #%d was already closed.", res.ID), nil
	}
	return fmt.Sprintf("Guest request ticket #%d has been successfully closed.", res.ID), nil
}

func (d *Dispatcher) roomDetails(ctx context.Context, c *call) (string, error) {
	c.room = c.args.String("room_number")
	room, err := d.deps.Reports.RoomDetails(ctx, c.room)
	if err != nil {
		return "", err
	}
	c.slots.RoomNumber = room.Number
	return fmt.Sprintf("Room %s: Type - %s, Status - %s", room.Number, room.Type, room.Status), nil
}

func (d *Dispatcher) allGuests(ctx context.Context, _ *call) (string, error) {
	guests, err := d.deps.Reports.ListGuests(ctx)
	if err != nil {
		return "", err
	}
	if len(guests) == 0 {
		return "No guest data found.", nil
	}
	return "Guests:\n" + strings.Join(guests, ", "), nil
}

func (d *Dispatcher) revenueByDate(ctx context.Context, c *call) (string, error) {
	day, err := c.parseDate("date")
	if err != nil {
		return "", err
	}
	c.day = day
	rev, err := d.deps.Reports.RevenueOn(ctx, day)
	if err != nil {
		return "", err
	}
	if !rev.Found() {
		return fmt.Sprintf("No revenue found on %s.", dates.Format(day)), nil
	}
	return fmt.Sprintf("Total revenue on %s: $%.2f", dates.Format(day), rev.Total), nil
}

func (d *Dispatcher) occupancyRate(ctx context.Context, c *call) (string, error) {
	day, err := c.parseDate("date")
	if err != nil {
		return "", err
	}
	c.day = day
	occ, err := d.deps.Reports.OccupancyOn(ctx, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Occupancy rate on %s: %.2f%%", dates.Format(day), occ.Rate()), nil
}

func (d *Dispatcher) topBookingSource(ctx context.Context, _ *call) (string, error) {
	top, err := d.deps.Reports.TopBookingSource(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("The top booking source is %s with $%.2f in revenue.", sourceName(top.Source), top.Total), nil
}

func (d *Dispatcher) listRoomTypes(ctx context.Context, _ *call) (string, error) {
	types, err := d.deps.Reports.ListRoomTypes(ctx)
	if err != nil {
		return "", err
	}
	if len(types) == 0 {
		return "No room types found in the system.", nil
	}
	lines := make([]string, 0, len(types))
	for _, rt := range types {
		lines = append(lines, fmt.Sprintf("%s: $%.2f per night", rt.Name, rt.RatePerNight))
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) listBookingSources(ctx context.Context, _ *call) (string, error) {
	sources, err := d.deps.Reports.ListBookingSources(ctx)
	if err != nil {
		return "", err
	}
	if len(sources) == 0 {
		return "No booking sources found in the system.", nil
	}
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, sourceName(s))
	}
	return strings.Join(lines, "\n"), nil
}

func sourceName(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}
