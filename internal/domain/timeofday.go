package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TimeOfDay is a wall-clock time without a date, at minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

var errInvalidTimeOfDay = errors.New("time must be HH:MM")

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, errInvalidTimeOfDay
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay accepts exactly "HH:MM" with a two-digit hour and minute.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return TimeOfDay{}, errInvalidTimeOfDay
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return TimeOfDay{}, errInvalidTimeOfDay
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return TimeOfDay{}, errInvalidTimeOfDay
	}
	return NewTimeOfDay(h, m)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes is the offset from midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

func (t TimeOfDay) After(o TimeOfDay) bool {
	return t.Minutes() > o.Minutes()
}

// Add returns the time d later and whether it is still on the same day.
// Durations are truncated to whole minutes.
func (t TimeOfDay) Add(d time.Duration) (TimeOfDay, bool) {
	total := t.Minutes() + int(d/time.Minute)
	if total < 0 || total >= 24*60 {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}, true
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
