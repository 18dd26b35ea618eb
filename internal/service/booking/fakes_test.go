package booking

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/idalloc"
	"interviewdesk/internal/store"
)

type fakeCandidates struct {
	findFn   func(ctx context.Context, externalID string) ([]domain.Candidate, error)
	createFn func(ctx context.Context, c domain.Candidate) (domain.Candidate, error)
	latestFn func(ctx context.Context) (string, bool, error)
}

func (f *fakeCandidates) FindByExternalID(ctx context.Context, externalID string) ([]domain.Candidate, error) {
	if f.findFn == nil {
		panic("FindByExternalID not configured")
	}
	return f.findFn(ctx, externalID)
}

func (f *fakeCandidates) Create(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, c)
}

func (f *fakeCandidates) LatestSequence(ctx context.Context) (string, bool, error) {
	if f.latestFn == nil {
		panic("LatestSequence not configured")
	}
	return f.latestFn(ctx)
}

type fakeAppointments struct {
	createFn     func(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	getFn        func(ctx context.Context, id string) (domain.Appointment, error)
	findByEvent  func(ctx context.Context, eventID string) (domain.Appointment, error)
	linkFn       func(ctx context.Context, id string, ref domain.EventRef) error
	rescheduleFn func(ctx context.Context, id string, slot store.Reschedule) error
	latestFn     func(ctx context.Context) (string, bool, error)
}

func (f *fakeAppointments) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, appt)
}

func (f *fakeAppointments) Get(ctx context.Context, id string) (domain.Appointment, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakeAppointments) FindByCalendarEvent(ctx context.Context, eventID string) (domain.Appointment, error) {
	if f.findByEvent == nil {
		panic("FindByCalendarEvent not configured")
	}
	return f.findByEvent(ctx, eventID)
}

func (f *fakeAppointments) LinkCalendarEvent(ctx context.Context, id string, ref domain.EventRef) error {
	if f.linkFn == nil {
		panic("LinkCalendarEvent not configured")
	}
	return f.linkFn(ctx, id, ref)
}

func (f *fakeAppointments) Reschedule(ctx context.Context, id string, slot store.Reschedule) error {
	if f.rescheduleFn == nil {
		panic("Reschedule not configured")
	}
	return f.rescheduleFn(ctx, id, slot)
}

func (f *fakeAppointments) LatestSequence(ctx context.Context) (string, bool, error) {
	if f.latestFn == nil {
		panic("LatestSequence not configured")
	}
	return f.latestFn(ctx)
}

type fakeCalendar struct {
	insertFn func(ctx context.Context, calendarID string, ev domain.CalendarEvent) (domain.EventRef, error)
	patchFn  func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error)
}

func (f *fakeCalendar) InsertEvent(ctx context.Context, calendarID string, ev domain.CalendarEvent) (domain.EventRef, error) {
	if f.insertFn == nil {
		panic("InsertEvent not configured")
	}
	return f.insertFn(ctx, calendarID, ev)
}

func (f *fakeCalendar) PatchEvent(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
	if f.patchFn == nil {
		panic("PatchEvent not configured")
	}
	return f.patchFn(ctx, calendarID, eventID, patch)
}

// recordingCache remembers every invalidated date.
type recordingCache struct {
	dates []string
}

func (c *recordingCache) Invalidate(ctx context.Context, dates ...string) error {
	c.dates = append(c.dates, dates...)
	return nil
}

var appointmentIDs = idalloc.Sequence{Namespace: "appointments", Prefix: "AP", Width: 7}

func allocatorAt(max string) idalloc.Allocator {
	return idalloc.NewMaxScan(appointmentIDs, maxSource(max), idalloc.WithSingleWriter())
}

type maxSource string

func (m maxSource) LatestSequence(ctx context.Context) (string, bool, error) {
	return string(m), m != "", nil
}

func testClock(t *testing.T) domain.BusinessClock {
	t.Helper()
	c, err := domain.NewBusinessClock("Asia/Tokyo")
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	return c
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func yamada() []domain.Candidate {
	return []domain.Candidate{{ID: "rec-js-1", HumanID: "JS-0000001", ExternalID: "U1", Name: "山田 太郎"}}
}
