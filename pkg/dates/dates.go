// Package dates turns the free-form dates guests type into calendar days and
// back into the conversational form used in replies.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrUnrecognized = errors.New("unrecognized date")

const ISOLayout = "2006-01-02"

var (
	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	spaces        = regexp.MustCompile(`\s+`)
)

var withYear = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01 02 2006",
	// Day first, tried once the month-first reading has failed.
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02 01 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday January 2 2006",
	"Monday 2 January 2006",
}

var withoutYear = []string{
	"January 2",
	"Jan 2",
	"2 January",
	"2 Jan",
	"01/02",
	"1/2",
	"Monday January 2",
	"Monday 2 January",
}

// Parse reads s relative to today. A date without a year lands in today's year
// when it is not yet past, otherwise in the following year. The result is UTC
// midnight of the calendar day.
func Parse(s string, today time.Time) (time.Time, error) {
	norm := normalize(s)
	if norm == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnrecognized)
	}

	base := Day(today)
	switch norm {
	case "today":
		return base, nil
	case "tomorrow":
		return base.AddDate(0, 0, 1), nil
	}

	for _, layout := range withYear {
		if t, err := time.Parse(layout, norm); err == nil {
			return Day(t), nil
		}
	}
	for _, layout := range withoutYear {
		if t, err := time.Parse(layout, norm); err == nil {
			return resolveYear(t.Month(), t.Day(), base), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognized, s)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func resolveYear(month time.Month, day int, today time.Time) time.Time {
	year := today.Year()
	for i := 0; i < 8; i++ {
		t := time.Date(year+i, month, day, 0, 0, 0, 0, time.UTC)
		if t.Month() != month {
			// Feb 29 outside a leap year
			continue
		}
		if !t.Before(today) {
			return t
		}
	}
	return time.Date(year+1, month, day, 0, 0, 0, 0, time.UTC)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(",", " ", ".", " ").Replace(s)
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, " of ", " ")
	s = strings.TrimPrefix(s, "the ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Format renders t as "18th August 2025".
func Format(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), ordinal(t.Day()), t.Month(), t.Year())
}

func ISO(t time.Time) string {
	return t.Format(ISOLayout)
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
