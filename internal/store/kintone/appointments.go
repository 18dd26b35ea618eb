package kintone

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/store"
)

const (
	fieldAppointmentID     = "appointment_id"
	fieldDate              = "date"
	fieldStart             = "start"
	fieldEnd               = "end"
	fieldLookupLineUserID  = "lookup_line_user_id"
	fieldCalendarEventID   = "calendar_event_id"
	fieldCalendarEventLink = "calendar_event_link"
)

type AppointmentRepo struct {
	client *Client
	app    App
}

func NewAppointmentRepo(client *Client, app App) *AppointmentRepo {
	return &AppointmentRepo{client: client, app: app}
}

// Create stores the appointment. The candidate is attached through the
// lookup on the LINE user id, so CandidateRef is not written.
func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	id, err := r.client.create(ctx, r.app, values(map[string]string{
		fieldAppointmentID:    appt.HumanID,
		fieldDate:             appt.Date,
		fieldStart:            appt.Start,
		fieldEnd:              appt.End,
		fieldLookupLineUserID: appt.CandidateExternalID,
	}))
	if err != nil {
		return domain.Appointment{}, err
	}
	appt.ID = id
	return appt, nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id string) (domain.Appointment, error) {
	rec, err := r.client.get(ctx, r.app, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	return appointmentFrom(rec), nil
}

func (r *AppointmentRepo) FindByCalendarEvent(ctx context.Context, eventID string) (domain.Appointment, error) {
	query := fmt.Sprintf("%s = %s order by $id desc limit 1", fieldCalendarEventID, quote(eventID))
	recs, err := r.client.search(ctx, r.app, query)
	if err != nil {
		return domain.Appointment{}, err
	}
	if len(recs) == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return appointmentFrom(recs[0]), nil
}

func (r *AppointmentRepo) LinkCalendarEvent(ctx context.Context, id string, ref domain.EventRef) error {
	return r.client.update(ctx, r.app, id, values(map[string]string{
		fieldCalendarEventID:   ref.ID,
		fieldCalendarEventLink: ref.Link,
	}))
}

func (r *AppointmentRepo) Reschedule(ctx context.Context, id string, slot store.Reschedule) error {
	return r.client.update(ctx, r.app, id, values(map[string]string{
		fieldDate:  slot.Date,
		fieldStart: slot.Start,
		fieldEnd:   slot.End,
	}))
}

func (r *AppointmentRepo) LatestSequence(ctx context.Context) (string, bool, error) {
	return r.client.latestRecordNumber(ctx, r.app)
}

func appointmentFrom(rec record) domain.Appointment {
	a := domain.Appointment{
		ID:                  rec.str("$id"),
		HumanID:             rec.str(fieldAppointmentID),
		CandidateExternalID: rec.str(fieldLookupLineUserID),
		Date:                rec.str(fieldDate),
		Start:               rec.str(fieldStart),
		End:                 rec.str(fieldEnd),
	}
	if i := strings.LastIndexByte(a.HumanID, '-'); i >= 0 {
		a.Seq, _ = strconv.ParseInt(a.HumanID[i+1:], 10, 64)
	}
	if v := rec.str(fieldCalendarEventID); v != "" {
		a.CalendarEventID = &v
	}
	if v := rec.str(fieldCalendarEventLink); v != "" {
		a.CalendarEventLink = &v
	}
	a.CreatedAt, a.UpdatedAt = timestamps(rec)
	return a
}
