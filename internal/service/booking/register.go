package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"interviewdesk/internal/domain"
	"interviewdesk/internal/idalloc"
	"interviewdesk/internal/store"
)

type RegisterInput struct {
	ExternalID string
	Name       string
	Profile    map[string]string
}

type Registration struct {
	RecordRef   string
	CandidateID string
}

type Registrar struct {
	candidates store.CandidateRepository
	ids        idalloc.Allocator
	log        *slog.Logger
}

func NewRegistrar(candidates store.CandidateRepository, ids idalloc.Allocator, log *slog.Logger) *Registrar {
	if log == nil {
		log = slog.Default()
	}
	return &Registrar{
		candidates: candidates,
		ids:        ids,
		log:        log.With(slog.String("component", "registration")),
	}
}

// Register stores a new candidate under the next candidate id.
func (r *Registrar) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	externalID := strings.TrimSpace(in.ExternalID)
	if externalID == "" {
		return Registration{}, validationError("lineUserId is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Registration{}, validationError("name is required")
	}

	var created domain.Candidate
	id, err := r.ids.Allocate(ctx, func(ctx context.Context, id idalloc.ID) error {
		c, err := r.candidates.Create(ctx, domain.Candidate{
			HumanID:    id.Value,
			Seq:        id.Seq,
			ExternalID: externalID,
			Name:       name,
			Profile:    in.Profile,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRecordPersistFailed, err)
		}
		created = c
		return nil
	})
	if err != nil {
		r.log.Error("registration failed", slog.Any("err", err), slog.String("candidate", externalID))
		return Registration{}, err
	}

	r.log.Info("candidate registered", slog.String("candidate_id", id.Value), slog.String("record", created.ID))
	return Registration{RecordRef: created.ID, CandidateID: id.Value}, nil
}
