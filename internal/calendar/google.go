package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"interviewdesk/internal/domain"
)

type GoogleOptions struct {
	// CredentialsJSON is a service-account key. Empty falls back to
	// application default credentials.
	CredentialsJSON string
	// ClientOptions are appended as given, mostly for tests.
	ClientOptions []option.ClientOption
}

type Google struct {
	svc *gcal.Service
	log *slog.Logger
}

func NewGoogle(ctx context.Context, opts GoogleOptions, log *slog.Logger) (*Google, error) {
	if log == nil {
		log = slog.Default()
	}

	clientOpts := []option.ClientOption{option.WithScopes(gcal.CalendarScope)}
	if opts.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(opts.CredentialsJSON)))
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google calendar client: %w", err)
	}
	return &Google{svc: svc, log: log.With(slog.String("component", "google_calendar"))}, nil
}

func (g *Google) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]domain.CalendarEvent, error) {
	call := g.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false)

	var out []domain.CalendarEvent
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}
			out = append(out, fromGoogle(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	g.log.Debug("events listed", slog.String("calendar_id", calendarID), slog.Int("count", len(out)))
	return out, nil
}

func (g *Google) InsertEvent(ctx context.Context, calendarID string, ev domain.CalendarEvent) (domain.EventRef, error) {
	created, err := g.svc.Events.Insert(calendarID, toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return domain.EventRef{}, fmt.Errorf("insert event: %w", err)
	}
	return domain.EventRef{ID: created.Id, Link: created.HtmlLink}, nil
}

func (g *Google) PatchEvent(ctx context.Context, calendarID, eventID string, patch domain.EventPatch) (domain.CalendarEvent, error) {
	body := &gcal.Event{}
	if patch.Summary != nil {
		body.Summary = *patch.Summary
		if body.Summary == "" {
			body.ForceSendFields = append(body.ForceSendFields, "Summary")
		}
	}
	if patch.Description != nil {
		body.Description = *patch.Description
		if body.Description == "" {
			body.ForceSendFields = append(body.ForceSendFields, "Description")
		}
	}
	if patch.Start != nil {
		body.Start = toGoogleTime(*patch.Start)
	}
	if patch.End != nil {
		body.End = toGoogleTime(*patch.End)
	}

	updated, err := g.svc.Events.Patch(calendarID, eventID, body).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
			return domain.CalendarEvent{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return domain.CalendarEvent{}, fmt.Errorf("patch event: %w", err)
	}
	return fromGoogle(updated), nil
}

func fromGoogle(item *gcal.Event) domain.CalendarEvent {
	return domain.CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       fromGoogleTime(item.Start),
		End:         fromGoogleTime(item.End),
		HTMLLink:    item.HtmlLink,
	}
}

func fromGoogleTime(t *gcal.EventDateTime) domain.EventTime {
	if t == nil {
		return domain.EventTime{}
	}
	return domain.EventTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}

func toGoogle(ev domain.CalendarEvent) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       toGoogleTime(ev.Start),
		End:         toGoogleTime(ev.End),
	}
}

func toGoogleTime(t domain.EventTime) *gcal.EventDateTime {
	return &gcal.EventDateTime{DateTime: t.DateTime, Date: t.Date, TimeZone: t.TimeZone}
}
