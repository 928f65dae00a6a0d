package errs

import (
	"fmt"

	cr "github.com/cockroachdb/errors"
)

// Wrap adds msg and a stack trace to err. The result still matches err with the
// standard errors.Is.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

// Classify tags err with a domain sentinel so that errors.Is matches both the
// sentinel and the original cause.
func Classify(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
