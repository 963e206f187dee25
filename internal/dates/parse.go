package dates

import (
	"fmt"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var lenientLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006 15:04:05 -0700",
}

type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid ISO-8601 date %q", e.Value)
}

// ParseISO parses an ISO-8601 date or datetime. A trailing "Z" means UTC.
// Values without an offset are returned in UTC and compared by wall clock.
func ParseISO(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Value: s}
}

// ParseBound parses a filter boundary. Plain YYYY-MM-DD values expand to the
// start of the day, or to 23:59:59 when endOfDay is set.
func ParseBound(s string, endOfDay bool) (time.Time, error) {
	value := strings.TrimSpace(s)
	if !strings.Contains(value, "T") {
		if d, err := time.Parse("2006-01-02", value); err == nil {
			if endOfDay {
				return d.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
			}
			return d, nil
		}
	}
	return ParseISO(value)
}

// ToNaive drops the zone offset and keeps the wall clock. Every due-date
// comparison goes through it so aware and naive values never mix.
func ToNaive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// SameDay compares calendar dates by wall clock.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysUntil is the number of whole calendar days from now until t,
// negative when t is in the past.
func DaysUntil(t, now time.Time) int {
	a := StartOfDay(ToNaive(now))
	b := StartOfDay(ToNaive(t))
	return int(b.Sub(a).Hours() / 24)
}
