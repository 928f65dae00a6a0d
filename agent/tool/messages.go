package tool

import (
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/dates"
)

var errBadArgument = errors.New("invalid tool argument")

const invalidDateText = "Invalid date format. Please use a recognizable format like YYYY-MM-DD or 18th August."

// MissingText turns a field name into the question asked back to the guest,
// e.g. check_in_date becomes "Check in date is missing. Could you please provide it?".
func MissingText(field string) string {
	natural := strings.ToLower(strings.ReplaceAll(field, "_", " "))
	if natural != "" {
		natural = strings.ToUpper(natural[:1]) + natural[1:]
	}
	return natural + " is missing. Could you please provide it?"
}

func classify(err error) contractx.Outcome {
	switch {
	case errors.Is(err, motel.ErrMissingParameter):
		return contractx.OutcomeMissingParameter
	case errors.Is(err, dates.ErrUnrecognized),
		errors.Is(err, errBadArgument),
		errors.Is(err, motel.ErrInvalidRange),
		errors.Is(err, motel.ErrRoomNotFound),
		errors.Is(err, motel.ErrRateNotFound),
		errors.Is(err, motel.ErrRoomUnavailable),
		errors.Is(err, motel.ErrBusy),
		errors.Is(err, motel.ErrTicketNotFound),
		errors.Is(err, motel.ErrNoRoomsRegistered),
		errors.Is(err, motel.ErrNoBookings):
		return contractx.OutcomeRejected
	default:
		return contractx.OutcomeError
	}
}

// describe renders err as the sentence returned to the model.
func describe(tool string, c *call, err error) string {
	var missing *motel.MissingParameterError
	if errors.As(err, &missing) {
		return MissingText(missing.Field)
	}

	switch {
	case errors.Is(err, dates.ErrUnrecognized):
		return invalidDateText
	case errors.Is(err, errBadArgument):
		return "Ticket ID must be a number."
	case errors.Is(err, motel.ErrPastDate):
		return fmt.Sprintf("Check-in date %s is in the past. Please provide a future date.", dates.Format(c.in))
	case errors.Is(err, motel.ErrInvalidRange):
		return "Check-out date must be after check-in date."
	case errors.Is(err, motel.ErrRoomNotFound):
		if tool == ToolRoomDetails {
			return fmt.Sprintf("No details found for room %s.", c.room)
		}
		return fmt.Sprintf("No room found with number %s.", c.room)
	case errors.Is(err, motel.ErrRateNotFound):
		return fmt.Sprintf("No rate found for the room type of room %s.", c.room)
	case errors.Is(err, motel.ErrRoomUnavailable):
		return fmt.Sprintf("Room %s is already booked between %s and %s. Please choose another room or different dates.",
			c.room, dates.Format(c.in), dates.Format(c.out))
	case errors.Is(err, motel.ErrBusy):
		return fmt.Sprintf("Room %s is being booked by someone else right now. Please try again in a moment.", c.room)
	case errors.Is(err, motel.ErrTicketNotFound):
		return fmt.Sprintf("No ticket found with ID %d.", c.ticketID)
	case errors.Is(err, motel.ErrNoRoomsRegistered):
		return "No rooms registered in the system."
	case errors.Is(err, motel.ErrNoBookings):
		return "No booking data found."
	case errors.Is(err, motel.ErrStoreUnavailable):
		return "The motel database is unavailable right now. Please try again shortly."
	}
	return fmt.Sprintf("Error %s: %v", failureSubject(tool, c), err)
}

// failureSubject names what was being attempted, for catch-all errors.
func failureSubject(tool string, c *call) string {
	switch tool {
	case ToolCheckAvailability:
		return "checking room availability"
	case ToolBookRoom:
		return "booking room " + c.room
	case ToolRaiseGuestRequest:
		return "raising guest request for room " + c.room
	case ToolViewGuestRequests:
		return "fetching guest requests"
	case ToolCloseGuestRequest:
		return fmt.Sprintf("closing guest request #%d", c.ticketID)
	case ToolRoomDetails:
		return "fetching details for room " + c.room
	case ToolAllGuests:
		return "fetching guests"
	case ToolRevenueByDate:
		return "fetching revenue for " + dates.Format(c.day)
	case ToolOccupancyRate:
		return "calculating occupancy rate for " + dates.Format(c.day)
	case ToolTopBookingSource:
		return "fetching top booking source"
	case ToolListRoomTypes:
		return "fetching room types"
	case ToolListBookingSources:
		return "fetching booking sources"
	default:
		return "running " + tool
	}
}
