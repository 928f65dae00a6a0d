package pgstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/pkg/errs"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgExclusionViolation   = "23P01"
	pgAdminShutdown        = "57P01"
	pgCrashShutdown        = "57P02"
	pgCannotConnectNow     = "57P03"
)

var domainErrors = []error{
	motel.ErrMissingParameter,
	motel.ErrInvalidRange,
	motel.ErrRoomNotFound,
	motel.ErrRateNotFound,
	motel.ErrRoomUnavailable,
	motel.ErrBusy,
	motel.ErrTicketNotFound,
	motel.ErrNoRoomsRegistered,
	motel.ErrNoBookings,
	motel.ErrStoreUnavailable,
	motel.ErrUnknown,
}

// classify maps a driver error onto the motel error taxonomy. The original
// error stays in the chain.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(err, op)
	}

	if code := sqlState(err); code != "" {
		switch {
		case code == pgLockNotAvailable, code == pgSerializationFailure, code == pgDeadlockDetected:
			return errs.Classify(errs.Wrap(err, op), motel.ErrBusy)
		case code == pgExclusionViolation:
			return errs.Classify(errs.Wrap(err, op), motel.ErrRoomUnavailable)
		case strings.HasPrefix(code, "08"), code == pgAdminShutdown, code == pgCrashShutdown, code == pgCannotConnectNow:
			return errs.Classify(errs.Wrap(err, op), motel.ErrStoreUnavailable)
		}
		return errs.Classify(errs.Wrap(err, op), motel.ErrUnknown)
	}

	if isConnectionError(err) {
		return errs.Classify(errs.Wrap(err, op), motel.ErrStoreUnavailable)
	}
	return errs.Classify(errs.Wrap(err, op), motel.ErrUnknown)
}

func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func isRetryable(err error) bool {
	switch sqlState(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	default:
		return false
	}
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
