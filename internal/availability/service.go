package availability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"interviewdesk/internal/domain"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// EventLister is the read side of the calendar.
type EventLister interface {
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error)
}

// SlotCache holds computed days keyed by YYYY-MM-DD.
type SlotCache interface {
	Get(ctx context.Context, date string) ([]domain.Slot, bool, error)
	Set(ctx context.Context, date string, slots []domain.Slot) error
	Invalidate(ctx context.Context, dates ...string) error
}

type Service struct {
	calendar     EventLister
	calendarID   string
	clock        domain.BusinessClock
	window       domain.BusinessWindow
	slotDuration time.Duration
	cache        SlotCache
	log          *slog.Logger
}

type Config struct {
	CalendarID   string
	Clock        domain.BusinessClock
	Window       domain.BusinessWindow
	SlotDuration time.Duration
}

func NewService(cal EventLister, cache SlotCache, cfg Config, log *slog.Logger) (*Service, error) {
	if err := cfg.Window.Validate(cfg.SlotDuration); err != nil {
		return nil, fmt.Errorf("business window: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		calendar:     cal,
		calendarID:   cfg.CalendarID,
		clock:        cfg.Clock,
		window:       cfg.Window,
		slotDuration: cfg.SlotDuration,
		cache:        cache,
		log:          log.With(slog.String("component", "availability")),
	}, nil
}

func (s *Service) Clock() domain.BusinessClock {
	return s.clock
}

// Day answers which slots of date are free.
func (s *Service) Day(ctx context.Context, date string) (domain.Day, error) {
	if date == "" {
		return domain.Day{}, validationError("date is required")
	}
	day, err := s.clock.ParseDate(date)
	if err != nil {
		return domain.Day{}, validationError("date must be YYYY-MM-DD")
	}

	if s.cache != nil {
		slots, ok, err := s.cache.Get(ctx, date)
		if err != nil {
			s.log.Warn("slot cache read failed", slog.Any("err", err), slog.String("date", date))
		} else if ok {
			return domain.Day{Date: date, Slots: slots}, nil
		}
	}

	if s.calendar == nil {
		return domain.Day{}, fmt.Errorf("%w: calendar is not configured", ErrUpstreamUnavailable)
	}

	from, to := s.clock.DayWindow(day)
	events, err := s.calendar.ListEvents(ctx, s.calendarID, from, to)
	if err != nil {
		s.log.Error("calendar list failed", slog.Any("err", err), slog.String("date", date))
		return domain.Day{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	busy := BuildBusySet(s.clock, slices.Values(events), s.log)
	slots := GenerateSlots(s.clock, day, s.window, s.slotDuration, busy)

	if s.cache != nil {
		if err := s.cache.Set(ctx, date, slots); err != nil {
			s.log.Warn("slot cache write failed", slog.Any("err", err), slog.String("date", date))
		}
	}

	s.log.Debug("slots computed",
		slog.String("date", date),
		slog.Int("events", len(events)),
		slog.Int("busy", busy.Len()),
		slog.Int("slots", len(slots)),
	)
	return domain.Day{Date: date, Slots: slots}, nil
}
