package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if _, err := conn(ctx, r.db).NewInsert().Model(&appt).Exec(ctx); err != nil {
		return domain.Appointment{}, mapWriteError(err)
	}
	return appt, nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id string) (domain.Appointment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Appointment{}, store.ErrNotFound
	}
	var appt domain.Appointment
	err := conn(ctx, r.db).NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, mapReadError(err)
	}
	return appt, nil
}

func (r *AppointmentRepo) FindByCalendarEvent(ctx context.Context, eventID string) (domain.Appointment, error) {
	var appt domain.Appointment
	err := conn(ctx, r.db).NewSelect().
		Model(&appt).
		Where("calendar_event_id = ?", eventID).
		OrderExpr("seq DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, mapReadError(err)
	}
	return appt, nil
}

func (r *AppointmentRepo) LinkCalendarEvent(ctx context.Context, id string, ref domain.EventRef) error {
	link := &ref.Link
	if ref.Link == "" {
		link = nil
	}
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("calendar_event_id = ?", ref.ID).Set("calendar_event_link = ?", link)
	})
}

func (r *AppointmentRepo) Reschedule(ctx context.Context, id string, slot store.Reschedule) error {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("date = ?", slot.Date).Set("start_time = ?", slot.Start).Set("end_time = ?", slot.End)
	})
}

func (r *AppointmentRepo) LatestSequence(ctx context.Context) (string, bool, error) {
	return latestSequence(ctx, conn(ctx, r.db), (*domain.Appointment)(nil))
}

func (r *AppointmentRepo) update(ctx context.Context, id string, set func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	if _, err := uuid.Parse(id); err != nil {
		return store.ErrNotFound
	}
	q := conn(ctx, r.db).NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id)
	res, err := set(q).Exec(ctx)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
