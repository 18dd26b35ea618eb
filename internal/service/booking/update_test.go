package booking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"interviewdesk/internal/calendar"
	"interviewdesk/internal/domain"
	"interviewdesk/internal/store"
)

func strPtr(s string) *string { return &s }

func newUpdater(t *testing.T, a *fakeAppointments, cal CalendarWriter, cache DayInvalidator) *Updater {
	t.Helper()
	return NewUpdater(a, cal, cache, OrchestratorConfig{CalendarID: "primary", Clock: testClock(t)}, quietLogger())
}

func patchedEvent(patch domain.EventPatch) domain.CalendarEvent {
	ev := domain.CalendarEvent{
		ID:       "evt1",
		Summary:  "面談: 山田",
		HTMLLink: "https://calendar.example/evt1",
		Start:    domain.EventTime{DateTime: "2026-10-14T01:00:00Z"},
		End:      domain.EventTime{DateTime: "2026-10-14T02:00:00Z"},
	}
	if patch.Start != nil {
		ev.Start, ev.End = *patch.Start, *patch.End
	}
	if patch.Description != nil {
		ev.Description = *patch.Description
	}
	return ev
}

func TestUpdaterUpdate_ReschedulesEventAndRecord(t *testing.T) {
	var gotPatch domain.EventPatch
	var gotSlot store.Reschedule
	cache := &recordingCache{}

	u := newUpdater(t,
		&fakeAppointments{
			findByEvent: func(ctx context.Context, eventID string) (domain.Appointment, error) {
				return domain.Appointment{ID: "rec-ap-1", Date: "2026-10-14", Start: "10:00", End: "11:00"}, nil
			},
			rescheduleFn: func(ctx context.Context, id string, slot store.Reschedule) error {
				if id != "rec-ap-1" {
					t.Fatalf("rescheduled %q", id)
				}
				gotSlot = slot
				return nil
			},
		},
		&fakeCalendar{patchFn: func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
			gotPatch = patch
			return patchedEvent(patch), nil
		}},
		cache,
	)

	got, err := u.Update(context.Background(), UpdateInput{EventID: "evt1", Date: "2026-10-15", StartTime: "13:00", EndTime: "14:00"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if gotPatch.Start == nil || gotPatch.Start.DateTime != "2026-10-15T13:00:00+09:00" || gotPatch.End.DateTime != "2026-10-15T14:00:00+09:00" {
		t.Fatalf("patch = %+v", gotPatch)
	}
	if gotPatch.Summary != nil || gotPatch.Description != nil {
		t.Fatalf("untouched fields patched: %+v", gotPatch)
	}
	if gotSlot != (store.Reschedule{Date: "2026-10-15", Start: "13:00", End: "14:00"}) {
		t.Fatalf("record slot = %+v", gotSlot)
	}
	want := UpdateResult{
		EventID:      "evt1",
		HTMLLink:     "https://calendar.example/evt1",
		Summary:      "面談: 山田",
		Date:         "2026-10-15",
		StartTime:    "13:00",
		EndTime:      "14:00",
		RecordSynced: true,
	}
	if got != want {
		t.Fatalf("result = %+v, want %+v", got, want)
	}
	sort.Strings(cache.dates)
	if !reflect.DeepEqual(cache.dates, []string{"2026-10-14", "2026-10-15"}) {
		t.Fatalf("invalidated = %v", cache.dates)
	}
}

func TestUpdaterUpdate_DescriptionOnlyLeavesRecordAlone(t *testing.T) {
	u := newUpdater(t,
		&fakeAppointments{findByEvent: func(ctx context.Context, eventID string) (domain.Appointment, error) {
			return domain.Appointment{ID: "rec-ap-1", Date: "2026-10-14"}, nil
		}},
		&fakeCalendar{patchFn: func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
			if patch.Start != nil {
				t.Fatalf("times patched")
			}
			return patchedEvent(patch), nil
		}},
		nil,
	)

	got, err := u.Update(context.Background(), UpdateInput{EventID: "evt1", Description: strPtr("オンライン")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Description != "オンライン" || got.Date != "2026-10-14" || got.StartTime != "10:00" || !got.RecordSynced {
		t.Fatalf("result = %+v", got)
	}
}

func TestUpdaterUpdate_Validation(t *testing.T) {
	u := newUpdater(t, &fakeAppointments{}, &fakeCalendar{}, nil)

	cases := map[string]UpdateInput{
		"missing event":      {Summary: strPtr("x")},
		"nothing to update":  {EventID: "evt1"},
		"date without times": {EventID: "evt1", Date: "2026-10-15"},
		"start only":         {EventID: "evt1", StartTime: "13:00"},
		"bad time":           {EventID: "evt1", Date: "2026-10-15", StartTime: "1pm", EndTime: "14:00"},
		"reversed":           {EventID: "evt1", Date: "2026-10-15", StartTime: "14:00", EndTime: "13:00"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := u.Update(context.Background(), in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestUpdaterUpdate_PatchFailureIsUpstreamUnavailable(t *testing.T) {
	u := newUpdater(t,
		&fakeAppointments{findByEvent: func(ctx context.Context, eventID string) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrNotFound
		}},
		&fakeCalendar{patchFn: func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
			return domain.CalendarEvent{}, errors.New("500")
		}},
		nil,
	)

	_, err := u.Update(context.Background(), UpdateInput{EventID: "evt1", Summary: strPtr("x")})

	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestUpdaterUpdate_MissingEventIsNotFound(t *testing.T) {
	u := newUpdater(t,
		&fakeAppointments{findByEvent: func(ctx context.Context, eventID string) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrNotFound
		}},
		&fakeCalendar{patchFn: func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
			return domain.CalendarEvent{}, fmt.Errorf("%w: evt1", calendar.ErrEventNotFound)
		}},
		nil,
	)

	_, err := u.Update(context.Background(), UpdateInput{EventID: "evt1", Summary: strPtr("x")})

	if !errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestUpdaterUpdate_RecordSyncFailureDoesNotFailUpdate(t *testing.T) {
	u := newUpdater(t,
		&fakeAppointments{
			findByEvent: func(ctx context.Context, eventID string) (domain.Appointment, error) {
				return domain.Appointment{ID: "rec-ap-1", Date: "2026-10-14"}, nil
			},
			rescheduleFn: func(ctx context.Context, id string, slot store.Reschedule) error {
				return errors.New("kintone down")
			},
		},
		&fakeCalendar{patchFn: func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
			return patchedEvent(patch), nil
		}},
		nil,
	)

	got, err := u.Update(context.Background(), UpdateInput{EventID: "evt1", Date: "2026-10-15", StartTime: "13:00", EndTime: "14:00"})

	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.RecordSynced {
		t.Fatalf("RecordSynced = true after failed sync")
	}
}

func TestUpdaterUpdate_UnlinkedEventStillUpdates(t *testing.T) {
	u := newUpdater(t,
		&fakeAppointments{findByEvent: func(ctx context.Context, eventID string) (domain.Appointment, error) {
			return domain.Appointment{}, store.ErrNotFound
		}},
		&fakeCalendar{patchFn: func(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
			return patchedEvent(patch), nil
		}},
		nil,
	)

	got, err := u.Update(context.Background(), UpdateInput{EventID: "evt1", Date: "2026-10-15", StartTime: "13:00", EndTime: "14:00"})

	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.RecordSynced || got.Date != "2026-10-15" {
		t.Fatalf("result = %+v", got)
	}
}
