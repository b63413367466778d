// Package schedule turns user supplied time expressions into absolute instants.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeFormat is matched by every *TimeFormatError.
var ErrTimeFormat = errors.New("unrecognised time format")

// TimeFormatError carries the text that could not be parsed.
type TimeFormatError struct {
	Text string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("%v: %q (expected HH:MM, DD.MM.YYYY HH:MM or HH:MM DD.MM.YYYY)", ErrTimeFormat, e.Text)
}

func (e *TimeFormatError) Is(target error) bool {
	return target == ErrTimeFormat
}

const (
	layoutClock     = "15:04"
	layoutDateClock = "02.01.2006 15:04"
	layoutClockDate = "15:04 02.01.2006"
)

// Resolver interprets expressions in a fixed reference timezone.
type Resolver struct {
	loc *time.Location
}

func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Location returns the reference timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve parses text relative to now. A bare HH:MM means today in the reference timezone,
// or tomorrow when today's instant is not after now. Dated forms are taken literally.
func (r *Resolver) Resolve(text string, now time.Time) (time.Time, error) {
	trimmed := strings.Join(strings.Fields(text), " ")

	if clock, err := parseFixed(layoutClock, trimmed, r.loc); err == nil {
		local := now.In(r.loc)
		at := time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, r.loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}

	for _, layout := range []string{layoutDateClock, layoutClockDate} {
		if at, err := parseFixed(layout, trimmed, r.loc); err == nil {
			return at, nil
		}
	}

	return time.Time{}, &TimeFormatError{Text: text}
}

// parseFixed requires every field at its full width. time.Parse alone accepts "9:05" for
// "15:04" while rejecting "1.2.2027" for "02.01.2006".
func parseFixed(layout, text string, loc *time.Location) (time.Time, error) {
	if len(text) != len(layout) {
		return time.Time{}, fmt.Errorf("%q does not match %q", text, layout)
	}
	return time.ParseInLocation(layout, text, loc)
}
