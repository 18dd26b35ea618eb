package domain

import (
	"errors"
	"time"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

var ErrEmptyInterval = errors.New("interval end must be after start")

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrEmptyInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two ranges share an instant. Ranges that only
// touch at a boundary do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}
