package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID                  string    `bun:"id,pk,type:uuid"`
	HumanID             string    `bun:"human_id,notnull,unique"`
	Seq                 int64     `bun:"seq,notnull"`
	CandidateRef        string    `bun:"candidate_ref,notnull"`
	CandidateExternalID string    `bun:"candidate_external_id,notnull"`
	Date                string    `bun:"date,notnull"`
	Start               string    `bun:"start_time,notnull"`
	End                 string    `bun:"end_time,notnull"`
	CalendarEventID     *string   `bun:"calendar_event_id"`
	CalendarEventLink   *string   `bun:"calendar_event_link"`
	CreatedAt           time.Time `bun:"created_at,notnull"`
	UpdatedAt           time.Time `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id.String()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

type Candidate struct {
	bun.BaseModel `bun:"table:candidates"`

	ID         string            `bun:"id,pk,type:uuid"`
	HumanID    string            `bun:"human_id,notnull,unique"`
	Seq        int64             `bun:"seq,notnull"`
	ExternalID string            `bun:"external_id,notnull,unique"`
	Name       string            `bun:"name,notnull"`
	Profile    map[string]string `bun:"profile,type:jsonb"`
	CreatedAt  time.Time         `bun:"created_at,notnull"`
	UpdatedAt  time.Time         `bun:"updated_at,notnull"`
}

func (c *Candidate) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if c.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			c.ID = id.String()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		c.UpdatedAt = now
	}
	return nil
}
