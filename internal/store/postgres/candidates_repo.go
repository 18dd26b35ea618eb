package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/uptrace/bun"

	"interviewdesk/internal/domain"
)

type CandidateRepo struct {
	db *bun.DB
}

func NewCandidateRepo(db *bun.DB) *CandidateRepo {
	return &CandidateRepo{db: db}
}

func (r *CandidateRepo) FindByExternalID(ctx context.Context, externalID string) ([]domain.Candidate, error) {
	var rows []domain.Candidate
	err := conn(ctx, r.db).NewSelect().
		Model(&rows).
		Where("external_id = ?", externalID).
		OrderExpr("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CandidateRepo) Create(ctx context.Context, c domain.Candidate) (domain.Candidate, error) {
	if _, err := conn(ctx, r.db).NewInsert().Model(&c).Exec(ctx); err != nil {
		return domain.Candidate{}, mapWriteError(err)
	}
	return c, nil
}

func (r *CandidateRepo) LatestSequence(ctx context.Context) (string, bool, error) {
	return latestSequence(ctx, conn(ctx, r.db), (*domain.Candidate)(nil))
}

func latestSequence(ctx context.Context, db bun.IDB, model any) (string, bool, error) {
	var seq int64
	err := db.NewSelect().
		Model(model).
		Column("seq").
		OrderExpr("seq DESC").
		Limit(1).
		Scan(ctx, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strconv.FormatInt(seq, 10), true, nil
}
