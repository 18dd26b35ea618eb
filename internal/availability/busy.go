package availability

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"

	"interviewdesk/internal/domain"
)

var (
	ErrMalformedUpstreamData = errors.New("malformed upstream data")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
)

// MalformedCalendarEventError describes one event that could not be turned
// into a busy interval.
type MalformedCalendarEventError struct {
	EventID string
	Reason  string
}

func (e *MalformedCalendarEventError) Error() string {
	return fmt.Sprintf("malformed calendar event %q: %s", e.EventID, e.Reason)
}

func (e *MalformedCalendarEventError) Is(target error) bool {
	return target == ErrMalformedUpstreamData
}

// BusySet is the set of booked intervals on one day.
type BusySet struct {
	intervals []domain.Interval
}

func NewBusySet(intervals ...domain.Interval) BusySet {
	out := make([]domain.Interval, len(intervals))
	copy(out, intervals)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return BusySet{intervals: out}
}

func (b BusySet) Len() int {
	return len(b.intervals)
}

func (b BusySet) Intervals() []domain.Interval {
	out := make([]domain.Interval, len(b.intervals))
	copy(out, b.intervals)
	return out
}

// Blocks reports whether any busy interval overlaps slot.
func (b BusySet) Blocks(slot domain.Interval) bool {
	for _, busy := range b.intervals {
		if slot.Overlaps(busy) {
			return true
		}
	}
	return false
}

// BusyInterval converts one calendar event. ok is false for all-day events,
// which block nothing.
func BusyInterval(clock domain.BusinessClock, ev domain.CalendarEvent) (domain.Interval, bool, error) {
	if !ev.Start.Timed() {
		return domain.Interval{}, false, nil
	}
	if !ev.End.Timed() {
		return domain.Interval{}, false, &MalformedCalendarEventError{EventID: ev.ID, Reason: "timed start without timed end"}
	}

	start, err := clock.ParseEventTime(ev.Start.DateTime, ev.Start.TimeZone)
	if err != nil {
		return domain.Interval{}, false, &MalformedCalendarEventError{EventID: ev.ID, Reason: "start: " + err.Error()}
	}
	end, err := clock.ParseEventTime(ev.End.DateTime, ev.End.TimeZone)
	if err != nil {
		return domain.Interval{}, false, &MalformedCalendarEventError{EventID: ev.ID, Reason: "end: " + err.Error()}
	}

	iv, err := domain.NewInterval(start, end)
	if err != nil {
		return domain.Interval{}, false, &MalformedCalendarEventError{EventID: ev.ID, Reason: err.Error()}
	}
	return iv, true, nil
}

// BuildBusySet collects the timed events of a day. Malformed events are
// logged and skipped so one bad entry cannot flip the whole day.
func BuildBusySet(clock domain.BusinessClock, events iter.Seq[domain.CalendarEvent], log *slog.Logger) BusySet {
	if log == nil {
		log = slog.Default()
	}

	var intervals []domain.Interval
	for ev := range events {
		iv, ok, err := BusyInterval(clock, ev)
		if err != nil {
			log.Warn("skipping calendar event", slog.Any("err", err), slog.String("event_id", ev.ID))
			continue
		}
		if !ok {
			log.Debug("skipping all-day calendar event", slog.String("event_id", ev.ID), slog.String("summary", ev.Summary))
			continue
		}
		intervals = append(intervals, iv)
	}
	return NewBusySet(intervals...)
}
