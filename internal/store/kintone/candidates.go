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
	fieldJobseekerID = "jobseeker_id"
	fieldLineUserID  = "line_user_id"
	fieldName        = "name"
)

type CandidateRepo struct {
	client *Client
	app    App
}

func NewCandidateRepo(client *Client, app App) *CandidateRepo {
	return &CandidateRepo{client: client, app: app}
}

func (r *CandidateRepo) FindByExternalID(ctx context.Context, externalID string) ([]domain.Candidate, error) {
	recs, err := r.client.search(ctx, r.app, fmt.Sprintf("%s = %s", fieldLineUserID, quote(externalID)))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, 0, len(recs))
	for _, rec := range recs {
		out = append(out, candidateFrom(rec))
	}
	return out, nil
}

// Create checks the external id first since the app may not enforce
// uniqueness on it.
func (r *CandidateRepo) Create(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	existing, err := r.FindByExternalID(ctx, c.ExternalID)
	if err != nil {
		return domain.Candidate{}, err
	}
	if len(existing) > 0 {
		return domain.Candidate{}, fmt.Errorf("%w: candidate %s already registered as %s", store.ErrConflict, c.ExternalID, existing[0].HumanID)
	}

	fields := make(map[string]string, len(c.Profile)+3)
	for k, v := range c.Profile {
		fields[k] = v
	}
	fields[fieldJobseekerID] = c.HumanID
	fields[fieldLineUserID] = c.ExternalID
	fields[fieldName] = c.Name

	id, err := r.client.create(ctx, r.app, values(fields))
	if err != nil {
		return domain.Candidate{}, err
	}
	c.ID = id
	return c, nil
}

// LatestSequence reports the newest record number, which is what the
// jobseeker id sequence follows.
func (r *CandidateRepo) LatestSequence(ctx context.Context) (string, bool, error) {
	return r.client.latestRecordNumber(ctx, r.app)
}

func candidateFrom(rec record) domain.Candidate {
	c := domain.Candidate{
		ID:         rec.str("$id"),
		HumanID:    rec.str(fieldJobseekerID),
		ExternalID: rec.str(fieldLineUserID),
		Name:       rec.str(fieldName),
		Profile:    map[string]string{},
	}
	if i := strings.LastIndexByte(c.HumanID, '-'); i >= 0 {
		c.Seq, _ = strconv.ParseInt(c.HumanID[i+1:], 10, 64)
	}
	for code, f := range rec {
		if strings.HasPrefix(code, "$") || code == fieldJobseekerID || code == fieldLineUserID || code == fieldName {
			continue
		}
		switch f.Type {
		case "SINGLE_LINE_TEXT", "MULTI_LINE_TEXT", "NUMBER", "DATE", "DROP_DOWN", "RADIO_BUTTON", "LINK":
			c.Profile[code] = rec.str(code)
		}
	}
	c.CreatedAt, c.UpdatedAt = timestamps(rec)
	return c
}
