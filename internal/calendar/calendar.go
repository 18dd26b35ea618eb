// Package calendar talks to the shared interview calendar.
package calendar

import (
	"context"
	"errors"
	"time"

	"interviewdesk/internal/domain"
)

var ErrEventNotFound = errors.New("calendar event not found")

type Calendar interface {
	// ListEvents returns the timed and all-day events that intersect [from, to).
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error)
	InsertEvent(ctx context.Context, calendarID string, ev domain.CalendarEvent) (domain.EventRef, error)
	PatchEvent(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error)
}
