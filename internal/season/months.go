// ABOUTME: Month name parsing and cyclic month range membership
// ABOUTME: Handles ranges that wrap across the year end (e.g. November to February)

package season

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownMonth is returned for names outside the twelve English month names.
var ErrUnknownMonth = errors.New("unknown month name")

var monthsByName = func() map[string]time.Month {
	m := make(map[string]time.Month, 12)
	for mo := time.January; mo <= time.December; mo++ {
		m[strings.ToLower(mo.String())] = mo
	}
	return m
}()

// ParseMonth parses a full English month name, ignoring case and surrounding space.
func ParseMonth(name string) (time.Month, error) {
	mo, ok := monthsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, name)
	}
	return mo, nil
}

// IsMonthInRange reports whether current lies on the cyclic arc from start
// to stop, both ends inclusive. When start is after stop the arc wraps
// through December.
func IsMonthInRange(start, stop, current time.Month) bool {
	if start <= stop {
		return current >= start && current <= stop
	}
	return current >= start || current <= stop
}

// Range is a harvest window between two months, inclusive.
type Range struct {
	Start     time.Month
	Stop      time.Month
	YearRound bool
}

// ParseRange builds a Range from month names.
func ParseRange(start, stop string) (Range, error) {
	s, err := ParseMonth(start)
	if err != nil {
		return Range{}, fmt.Errorf("start: %w", err)
	}
	e, err := ParseMonth(stop)
	if err != nil {
		return Range{}, fmt.Errorf("stop: %w", err)
	}
	return Range{Start: s, Stop: e}, nil
}

// Contains reports whether month falls inside the range.
func (r Range) Contains(month time.Month) bool {
	if r.YearRound {
		return true
	}
	return IsMonthInRange(r.Start, r.Stop, month)
}

// Label formats the range for display.
func (r Range) Label() string {
	if r.YearRound {
		return "Year-round"
	}
	return r.Start.String() + " – " + r.Stop.String()
}
