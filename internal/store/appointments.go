package store

import (
	"context"

	"interviewdesk/internal/domain"
)

type CandidateRepository interface {
	// FindByExternalID returns every candidate carrying the external id.
	// No match is an empty slice, not ErrNotFound.
	FindByExternalID(ctx context.Context, externalID string) ([]domain.Candidate, error)
	Create(ctx context.Context, c domain.Candidate) (domain.Candidate, error)
	// LatestSequence reports the highest stored candidate id, raw.
	LatestSequence(ctx context.Context) (string, bool, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Get(ctx context.Context, id string) (domain.Appointment, error)
	FindByCalendarEvent(ctx context.Context, eventID string) (domain.Appointment, error)
	LinkCalendarEvent(ctx context.Context, id string, ref domain.EventRef) error
	Reschedule(ctx context.Context, id string, slot Reschedule) error
	LatestSequence(ctx context.Context) (string, bool, error)
}

// Reschedule is the new civil date and times of an appointment.
type Reschedule struct {
	Date  string
	Start string
	End   string
}
