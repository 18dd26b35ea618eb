package availability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"interviewdesk/internal/domain"
)

type fakeLister struct {
	listFn func(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error)
}

func (f *fakeLister) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error) {
	if f.listFn == nil {
		panic("ListEvents not configured")
	}
	return f.listFn(ctx, calendarID, from, to)
}

type fakeCache struct {
	getFn        func(ctx context.Context, date string) ([]domain.Slot, bool, error)
	setFn        func(ctx context.Context, date string, slots []domain.Slot) error
	invalidateFn func(ctx context.Context, dates ...string) error
}

func (f *fakeCache) Get(ctx context.Context, date string) ([]domain.Slot, bool, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, date)
}

func (f *fakeCache) Set(ctx context.Context, date string, slots []domain.Slot) error {
	if f.setFn == nil {
		panic("Set not configured")
	}
	return f.setFn(ctx, date, slots)
}

func (f *fakeCache) Invalidate(ctx context.Context, dates ...string) error {
	if f.invalidateFn == nil {
		panic("Invalidate not configured")
	}
	return f.invalidateFn(ctx, dates...)
}

func testConfig(t *testing.T) Config {
	t.Helper()
	clock, err := domain.NewBusinessClock("Asia/Tokyo")
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	return Config{
		CalendarID: "primary",
		Clock:      clock,
		Window: domain.BusinessWindow{
			Open:          domain.MustTimeOfDay(10, 0),
			Close:         domain.MustTimeOfDay(17, 0),
			LastSlotStart: domain.MustTimeOfDay(16, 30),
		},
		SlotDuration: 30 * time.Minute,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServiceDay_QueriesWholeBusinessDay(t *testing.T) {
	var gotFrom, gotTo time.Time
	var gotCalendar string
	svc, err := NewService(&fakeLister{
		listFn: func(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error) {
			gotCalendar, gotFrom, gotTo = calendarID, from, to
			return []domain.CalendarEvent{{
				ID:    "ev1",
				Start: domain.EventTime{DateTime: "2026-10-14T10:00:00+09:00"},
				End:   domain.EventTime{DateTime: "2026-10-14T11:00:00+09:00"},
			}}, nil
		},
	}, nil, testConfig(t), quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	day, err := svc.Day(context.Background(), "2026-10-14")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}

	if gotCalendar != "primary" {
		t.Fatalf("calendar = %q, want primary", gotCalendar)
	}
	if want := "2026-10-14T00:00:00+09:00"; gotFrom.Format(time.RFC3339) != want {
		t.Fatalf("from = %s, want %s", gotFrom.Format(time.RFC3339), want)
	}
	if got := gotTo.Sub(gotFrom); got != 24*time.Hour {
		t.Fatalf("window = %s, want 24h", got)
	}
	if day.Date != "2026-10-14" || len(day.Slots) != 15 {
		t.Fatalf("day = %s with %d slots, want 2026-10-14 with 15", day.Date, len(day.Slots))
	}
	if day.Slots[0].Available || day.Slots[1].Available || !day.Slots[2].Available {
		t.Fatalf("first slots availability = %v %v %v, want false false true",
			day.Slots[0].Available, day.Slots[1].Available, day.Slots[2].Available)
	}
}

func TestServiceDay_ValidatesDateBeforeCallingCalendar(t *testing.T) {
	svc, err := NewService(&fakeLister{}, nil, testConfig(t), quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for _, date := range []string{"", "2026/10/14", "2026-02-30", "tomorrow"} {
		_, err := svc.Day(context.Background(), date)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Day(%q) error = %v, want *ValidationError", date, err)
		}
	}

	_, err = svc.Day(context.Background(), "2026/10/14")
	if err == nil || err.Error() != "date must be YYYY-MM-DD" {
		t.Fatalf("error = %v, want the date format message", err)
	}
}

func TestServiceDay_CalendarFailureIsUpstreamUnavailable(t *testing.T) {
	cause := errors.New("403 quota")
	svc, err := NewService(&fakeLister{
		listFn: func(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error) {
			return nil, cause
		},
	}, nil, testConfig(t), quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Day(context.Background(), "2026-10-14")
	if !errors.Is(err, ErrUpstreamUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable wrapping cause", err)
	}
}

func TestServiceDay_ServesFromCache(t *testing.T) {
	cached := []domain.Slot{{Start: domain.MustTimeOfDay(10, 0), End: domain.MustTimeOfDay(10, 30), Available: false}}
	svc, err := NewService(&fakeLister{}, &fakeCache{
		getFn: func(ctx context.Context, date string) ([]domain.Slot, bool, error) {
			return cached, true, nil
		},
	}, testConfig(t), quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	day, err := svc.Day(context.Background(), "2026-10-14")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day.Slots) != 1 || day.Slots[0].Available {
		t.Fatalf("slots = %+v, want the cached entry", day.Slots)
	}
}

func TestServiceDay_CacheErrorsAreIgnored(t *testing.T) {
	stored := false
	svc, err := NewService(&fakeLister{
		listFn: func(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error) {
			return nil, nil
		},
	}, &fakeCache{
		getFn: func(ctx context.Context, date string) ([]domain.Slot, bool, error) {
			return nil, false, errors.New("redis down")
		},
		setFn: func(ctx context.Context, date string, slots []domain.Slot) error {
			stored = true
			return errors.New("redis down")
		},
	}, testConfig(t), quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	day, err := svc.Day(context.Background(), "2026-10-14")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day.Slots) != 15 {
		t.Fatalf("slots = %d, want 15", len(day.Slots))
	}
	if !stored {
		t.Fatalf("expected a cache write attempt")
	}
}

func TestNewService_RejectsInvalidWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Window.LastSlotStart = domain.MustTimeOfDay(17, 0)

	if _, err := NewService(&fakeLister{}, nil, cfg, quietLogger()); err == nil {
		t.Fatalf("expected error for last start at close")
	}
}
