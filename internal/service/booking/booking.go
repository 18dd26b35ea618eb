// Package booking runs the multi-step workflows that touch both the record
// store and the shared calendar: booking an interview, registering a
// candidate, and moving an existing interview.
package booking

import (
	"context"
	"time"

	"interviewdesk/internal/domain"
)

// CalendarWriter is the write side of the shared calendar.
type CalendarWriter interface {
	InsertEvent(ctx context.Context, calendarID string, ev domain.CalendarEvent) (domain.EventRef, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error)
}

// DayInvalidator drops cached availability for the given dates.
type DayInvalidator interface {
	Invalidate(ctx context.Context, dates ...string) error
}

type slotInput struct {
	date  time.Time
	start domain.TimeOfDay
	end   domain.TimeOfDay
}

func parseSlot(clock domain.BusinessClock, date, start, end string) (slotInput, error) {
	if date == "" {
		return slotInput{}, validationError("date is required")
	}
	if start == "" {
		return slotInput{}, validationError("startTime is required")
	}
	if end == "" {
		return slotInput{}, validationError("endTime is required")
	}

	d, err := clock.ParseDate(date)
	if err != nil {
		return slotInput{}, validationError("date must be YYYY-MM-DD")
	}
	s, err := domain.ParseTimeOfDay(start)
	if err != nil {
		return slotInput{}, validationError("startTime must be HH:MM")
	}
	e, err := domain.ParseTimeOfDay(end)
	if err != nil {
		return slotInput{}, validationError("endTime must be HH:MM")
	}
	if !s.Before(e) {
		return slotInput{}, validationError("endTime must be after startTime")
	}
	return slotInput{date: d, start: s, end: e}, nil
}

func eventTimes(clock domain.BusinessClock, slot slotInput) (domain.EventTime, domain.EventTime) {
	zone := clock.Location().String()
	start := domain.EventTime{DateTime: clock.FormatEventTime(clock.At(slot.date, slot.start)), TimeZone: zone}
	end := domain.EventTime{DateTime: clock.FormatEventTime(clock.At(slot.date, slot.end)), TimeZone: zone}
	return start, end
}
