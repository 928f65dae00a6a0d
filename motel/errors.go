package motel

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingParameter  = errors.New("missing parameter")
	ErrInvalidRange      = errors.New("invalid date range")
	ErrPastDate          = fmt.Errorf("%w: check-in date is in the past", ErrInvalidRange)
	ErrRoomNotFound      = errors.New("room not found")
	ErrRateNotFound      = errors.New("rate not found")
	ErrRoomUnavailable   = errors.New("room unavailable")
	ErrBusy              = errors.New("store busy")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrNoRoomsRegistered = errors.New("no rooms registered")
	ErrNoBookings        = errors.New("no bookings")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrUnknown           = errors.New("unknown error")
)

// MissingParameterError names the absent field, e.g. "check_in_date".
type MissingParameterError struct {
	Field string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingParameter, e.Field)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

func Missing(field string) error {
	return &MissingParameterError{Field: field}
}

// Require returns a MissingParameterError for the first blank value, in
// argument order. Pairs are field name then value.
func Require(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return Missing(pairs[i])
		}
	}
	return nil
}

// ValidateStay checks in < out and in >= today, all compared as calendar days.
func ValidateStay(in, out, today time.Time) error {
	if in.IsZero() {
		return Missing("check_in_date")
	}
	if out.IsZero() {
		return Missing("check_out_date")
	}
	if Day(in).Before(Day(today)) {
		return ErrPastDate
	}
	if !Day(in).Before(Day(out)) {
		return fmt.Errorf("%w: check-out must be after check-in", ErrInvalidRange)
	}
	return nil
}
