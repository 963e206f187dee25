package dates

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

var weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// Resolver turns free text into a due date relative to its clock.
type Resolver struct {
	now    Clock
	parser *when.Parser
}

func NewResolver(now Clock) *Resolver {
	if now == nil {
		now = time.Now
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &Resolver{now: now, parser: w}
}

func (r *Resolver) Now() time.Time {
	return r.now()
}

// Today is midnight of the clock's current day, in the clock's location.
func (r *Resolver) Today() time.Time {
	return StartOfDay(r.now())
}

// Resolve returns the due date mentioned in text. Rules are tried in order:
// today/eod, tomorrow, a weekday name, then a fuzzy natural-language parse.
// The second return value is false when nothing date-like was found.
func (r *Resolver) Resolve(text string) (time.Time, bool) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, false
	}

	lower := strings.ToLower(text)
	today := r.Today()

	if strings.Contains(lower, "today") || strings.Contains(lower, "eod") {
		return today, true
	}

	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1), true
	}

	for _, wd := range weekdays {
		if strings.Contains(lower, strings.ToLower(wd.String())) {
			return NextWeekday(today, wd), true
		}
	}

	return r.fuzzy(text)
}

func (r *Resolver) fuzzy(text string) (time.Time, bool) {
	result, err := r.parser.Parse(text, r.now())
	if err != nil || result == nil {
		return time.Time{}, false
	}
	return StartOfDay(result.Time), true
}

// ParseLenient accepts ISO dates, a handful of common layouts and finally
// anything the fuzzy parser understands. It returns nil instead of an error.
func (r *Resolver) ParseLenient(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if t, err := ParseISO(s); err == nil {
		return &t
	}

	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	if t, ok := r.fuzzy(s); ok {
		return &t
	}
	return nil
}

// NextWeekday returns the next date strictly after from that falls on wd.
func NextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
