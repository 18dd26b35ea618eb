package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/idalloc"
	"interviewdesk/internal/store"
)

type State string

const (
	StateLookupCandidate          State = "lookup_candidate"
	StateAllocateID               State = "allocate_id"
	StatePersistRecord            State = "persist_record"
	StateCreateCalendarEvent      State = "create_calendar_event"
	StateLinkEventToRecord        State = "link_event_to_record"
	StateDone                     State = "done"
	StateDoneWithoutCalendarEvent State = "done_without_calendar_event"
	StateFailed                   State = "failed"
)

type BookInput struct {
	CandidateExternalID string
	Date                string
	StartTime           string
	EndTime             string
}

type Booking struct {
	AppointmentID     string
	RecordRef         string
	CalendarEventRef  *string
	CalendarEventLink *string
	CandidateName     string
	State             State
	// Linked is false when the calendar event exists but the record does not
	// point at it.
	Linked bool
	Trace  []State
}

type Orchestrator struct {
	candidates   store.CandidateRepository
	appointments store.AppointmentRepository
	ids          idalloc.Allocator
	calendar     CalendarWriter
	calendarID   string
	clock        domain.BusinessClock
	cache        DayInvalidator
	log          *slog.Logger
}

type OrchestratorConfig struct {
	CalendarID string
	Clock      domain.BusinessClock
}

// NewOrchestrator wires a booking workflow. cal and cache may be nil; a nil
// calendar makes every booking end without a calendar event.
func NewOrchestrator(
	candidates store.CandidateRepository,
	appointments store.AppointmentRepository,
	ids idalloc.Allocator,
	cal CalendarWriter,
	cache DayInvalidator,
	cfg OrchestratorConfig,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		candidates:   candidates,
		appointments: appointments,
		ids:          ids,
		calendar:     cal,
		calendarID:   cfg.CalendarID,
		clock:        cfg.Clock,
		cache:        cache,
		log:          log.With(slog.String("component", "booking")),
	}
}

// Book records the appointment, then mirrors it on the calendar. Failures
// after the record exists downgrade the result instead of failing it.
func (o *Orchestrator) Book(ctx context.Context, in BookInput) (Booking, error) {
	if in.CandidateExternalID == "" {
		return Booking{}, validationError("userId is required")
	}
	slot, err := parseSlot(o.clock, in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return Booking{}, err
	}

	b := Booking{}
	enter := func(s State) { b.State = s; b.Trace = append(b.Trace, s) }
	fail := func(err error) (Booking, error) {
		enter(StateFailed)
		return b, err
	}
	log := o.log.With(slog.String("candidate", in.CandidateExternalID), slog.String("date", in.Date), slog.String("start", in.StartTime))

	enter(StateLookupCandidate)
	matches, err := o.candidates.FindByExternalID(ctx, in.CandidateExternalID)
	if err != nil {
		log.Error("candidate lookup failed", slog.Any("err", err))
		return fail(fmt.Errorf("%w: candidate lookup: %w", ErrUpstreamUnavailable, err))
	}
	if len(matches) == 0 {
		return fail(ErrCandidateNotFound)
	}
	if len(matches) > 1 {
		log.Warn("several candidates share one external id, using the first", slog.Int("matches", len(matches)))
	}
	candidate := matches[0]
	b.CandidateName = candidate.Name

	enter(StateAllocateID)
	var record domain.Appointment
	_, err = o.ids.Allocate(ctx, func(ctx context.Context, id idalloc.ID) error {
		enter(StatePersistRecord)
		created, err := o.appointments.Create(ctx, domain.Appointment{
			HumanID:             id.Value,
			Seq:                 id.Seq,
			CandidateRef:        candidate.ID,
			CandidateExternalID: candidate.ExternalID,
			Date:                in.Date,
			Start:               slot.start.String(),
			End:                 slot.end.String(),
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRecordPersistFailed, err)
		}
		record = created
		return nil
	})
	if err != nil {
		log.Error("booking failed", slog.Any("err", err), slog.String("state", string(b.State)))
		return fail(err)
	}
	b.AppointmentID = record.HumanID
	b.RecordRef = record.ID
	log = log.With(slog.String("appointment_id", record.HumanID))

	defer o.invalidate(ctx, in.Date)

	if o.calendar == nil {
		log.Warn("calendar not configured, booking without calendar event")
		enter(StateDoneWithoutCalendarEvent)
		return b, nil
	}

	enter(StateCreateCalendarEvent)
	start, end := eventTimes(o.clock, slot)
	ref, err := o.calendar.InsertEvent(ctx, o.calendarID, domain.CalendarEvent{
		Summary:     "面談: " + candidate.Name,
		Description: fmt.Sprintf("求職者: %s\n面談ID: %s\nレコードID: %s", candidate.Name, record.HumanID, record.ID),
		Start:       start,
		End:         end,
	})
	if err != nil {
		log.Error("calendar event create failed, booking kept", slog.Any("err", err))
		enter(StateDoneWithoutCalendarEvent)
		return b, nil
	}
	b.CalendarEventRef = &ref.ID
	if ref.Link != "" {
		b.CalendarEventLink = &ref.Link
	}

	enter(StateLinkEventToRecord)
	if err := o.appointments.LinkCalendarEvent(ctx, record.ID, ref); err != nil {
		log.Error("linking calendar event to record failed", slog.Any("err", err), slog.String("event_id", ref.ID))
	} else {
		b.Linked = true
	}

	enter(StateDone)
	log.Info("appointment booked", slog.String("event_id", ref.ID), slog.Bool("linked", b.Linked))
	return b, nil
}

// Appointment returns one stored appointment by record reference.
func (o *Orchestrator) Appointment(ctx context.Context, id string) (domain.Appointment, error) {
	if id == "" {
		return domain.Appointment{}, validationError("id is required")
	}
	appt, err := o.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, err
		}
		return domain.Appointment{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return appt, nil
}

func (o *Orchestrator) invalidate(ctx context.Context, dates ...string) {
	invalidate(ctx, o.cache, o.log, dates...)
}

func invalidate(ctx context.Context, cache DayInvalidator, log *slog.Logger, dates ...string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(context.WithoutCancel(ctx), dates...); err != nil {
		log.Warn("slot cache invalidation failed", slog.Any("err", err), slog.Any("dates", dates))
	}
}
