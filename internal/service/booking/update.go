package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"interviewdesk/internal/calendar"
	"interviewdesk/internal/domain"
	"interviewdesk/internal/store"
)

type UpdateInput struct {
	EventID     string
	Date        string
	StartTime   string
	EndTime     string
	Summary     *string
	Description *string
}

func (in UpdateInput) reschedules() bool {
	return in.Date != "" || in.StartTime != "" || in.EndTime != ""
}

type UpdateResult struct {
	EventID     string
	HTMLLink    string
	Summary     string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	// RecordSynced is true when the linked appointment record now matches
	// the event times.
	RecordSynced bool
}

type Updater struct {
	appointments store.AppointmentRepository
	calendar     CalendarWriter
	calendarID   string
	clock        domain.BusinessClock
	cache        DayInvalidator
	log          *slog.Logger
}

func NewUpdater(appointments store.AppointmentRepository, cal CalendarWriter, cache DayInvalidator, cfg OrchestratorConfig, log *slog.Logger) *Updater {
	if log == nil {
		log = slog.Default()
	}
	return &Updater{
		appointments: appointments,
		calendar:     cal,
		calendarID:   cfg.CalendarID,
		clock:        cfg.Clock,
		cache:        cache,
		log:          log.With(slog.String("component", "appointment_update")),
	}
}

// Update patches the calendar event and then brings the linked record in
// line. The calendar is the source of truth here, so only the patch can fail
// the call.
func (u *Updater) Update(ctx context.Context, in UpdateInput) (UpdateResult, error) {
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		return UpdateResult{}, validationError("eventId is required")
	}
	if !in.reschedules() && in.Summary == nil && in.Description == nil {
		return UpdateResult{}, validationError("nothing to update")
	}

	patch := domain.EventPatch{Summary: in.Summary, Description: in.Description}
	var slot slotInput
	if in.reschedules() {
		if in.Date == "" || in.StartTime == "" || in.EndTime == "" {
			return UpdateResult{}, validationError("date, startTime and endTime must be given together")
		}
		s, err := parseSlot(u.clock, in.Date, in.StartTime, in.EndTime)
		if err != nil {
			return UpdateResult{}, err
		}
		slot = s
		start, end := eventTimes(u.clock, slot)
		patch.Start, patch.End = &start, &end
	}

	if u.calendar == nil {
		return UpdateResult{}, fmt.Errorf("%w: calendar is not configured", ErrUpstreamUnavailable)
	}

	log := u.log.With(slog.String("event_id", eventID))

	record, recordErr := u.appointments.FindByCalendarEvent(ctx, eventID)
	if recordErr != nil && !errors.Is(recordErr, store.ErrNotFound) {
		log.Warn("linked record lookup failed", slog.Any("err", recordErr))
	}

	ev, err := u.calendar.PatchEvent(ctx, u.calendarID, eventID, patch)
	if err != nil {
		log.Error("calendar patch failed", slog.Any("err", err))
		if errors.Is(err, calendar.ErrEventNotFound) {
			return UpdateResult{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return UpdateResult{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	out := u.result(ev)

	dates := []string{}
	if out.Date != "" {
		dates = append(dates, out.Date)
	}
	if recordErr == nil {
		if record.Date != "" && record.Date != out.Date {
			dates = append(dates, record.Date)
		}
		out.RecordSynced = !in.reschedules() || u.syncRecord(ctx, log, record.ID, in)
	}
	invalidate(ctx, u.cache, u.log, dates...)

	log.Info("appointment updated", slog.String("date", out.Date), slog.Bool("record_synced", out.RecordSynced))
	return out, nil
}

func (u *Updater) syncRecord(ctx context.Context, log *slog.Logger, recordID string, in UpdateInput) bool {
	err := u.appointments.Reschedule(ctx, recordID, store.Reschedule{Date: in.Date, Start: in.StartTime, End: in.EndTime})
	if err != nil {
		log.Error("record sync failed, calendar already updated", slog.Any("err", err), slog.String("record", recordID))
		return false
	}
	return true
}

// result reads the event back in business time.
func (u *Updater) result(ev domain.CalendarEvent) UpdateResult {
	out := UpdateResult{
		EventID:     ev.ID,
		HTMLLink:    ev.HTMLLink,
		Summary:     ev.Summary,
		Description: ev.Description,
	}
	if start, err := u.clock.ParseEventTime(ev.Start.DateTime, ev.Start.TimeZone); err == nil && ev.Start.Timed() {
		out.Date = u.clock.FormatDate(start)
		out.StartTime = u.clock.TimeOfDayOf(start).String()
	}
	if end, err := u.clock.ParseEventTime(ev.End.DateTime, ev.End.TimeZone); err == nil && ev.End.Timed() {
		out.EndTime = u.clock.TimeOfDayOf(end).String()
	}
	return out
}
