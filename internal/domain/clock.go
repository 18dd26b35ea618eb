package domain

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

const DateLayout = "2006-01-02"

const offsetlessLayout = "2006-01-02T15:04:05"

// BusinessClock converts between the business's civil calendar and instants.
// Every timestamp that takes part in an availability comparison goes through
// it, so slot bounds and busy intervals always share one zone.
type BusinessClock struct {
	loc *time.Location
}

func NewBusinessClock(name string) (BusinessClock, error) {
	if name == "" {
		return BusinessClock{}, errors.New("time_zone is required")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return BusinessClock{}, errors.New("invalid time_zone")
	}
	return BusinessClock{loc: loc}, nil
}

func BusinessClockIn(loc *time.Location) BusinessClock {
	return BusinessClock{loc: loc}
}

func (c BusinessClock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// ParseDate parses YYYY-MM-DD as midnight in the business zone.
func (c BusinessClock) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, c.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	return d, nil
}

func (c BusinessClock) FormatDate(t time.Time) string {
	return t.In(c.Location()).Format(DateLayout)
}

// At is the instant of the given wall-clock time on date's civil day.
func (c BusinessClock) At(date time.Time, t TimeOfDay) time.Time {
	d := date.In(c.Location())
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, c.Location())
}

// DayWindow is [midnight, next midnight) of date's civil day.
func (c BusinessClock) DayWindow(date time.Time) (time.Time, time.Time) {
	d := date.In(c.Location())
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.Location())
	return start, start.AddDate(0, 0, 1)
}

func (c BusinessClock) Normalize(t time.Time) time.Time {
	return t.In(c.Location())
}

// TimeOfDayOf is the wall-clock time of t in the business zone.
func (c BusinessClock) TimeOfDayOf(t time.Time) TimeOfDay {
	n := c.Normalize(t)
	return TimeOfDay{Hour: n.Hour(), Minute: n.Minute()}
}

// ParseEventTime reads a calendar timestamp. Strings carrying an offset are
// taken as instants. Strings without one are wall-clock times in eventTZ, or
// in the business zone when eventTZ is empty.
func (c BusinessClock) ParseEventTime(s, eventTZ string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return c.Normalize(t), nil
	}

	loc := c.Location()
	if eventTZ != "" {
		l, err := time.LoadLocation(eventTZ)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown event time zone %q", eventTZ)
		}
		loc = l
	}
	t, err := time.ParseInLocation(offsetlessLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
	}
	return c.Normalize(t), nil
}

// FormatEventTime renders t as RFC 3339 with the business zone's offset.
func (c BusinessClock) FormatEventTime(t time.Time) string {
	return c.Normalize(t).Format(time.RFC3339)
}
