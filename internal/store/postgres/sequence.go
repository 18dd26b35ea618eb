package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"interviewdesk/internal/idalloc"
)

// SequenceAllocator serializes allocation per namespace across every process
// sharing the database. The max read and persist share one transaction that
// holds an advisory lock on the namespace; repositories built on the same
// *bun.DB join that transaction through the context.
type SequenceAllocator struct {
	db   *bun.DB
	scan *idalloc.MaxScan
	seq  idalloc.Sequence
	log  *slog.Logger
}

func NewSequenceAllocator(db *bun.DB, seq idalloc.Sequence, source idalloc.MaxSource, log *slog.Logger) *SequenceAllocator {
	if log == nil {
		log = slog.Default()
	}
	return &SequenceAllocator{
		db:   db,
		scan: idalloc.NewMaxScan(seq, source, idalloc.WithLogger(log)),
		seq:  seq,
		log:  log.With(slog.String("component", "sequence_allocator"), slog.String("namespace", seq.Namespace)),
	}
}

func (a *SequenceAllocator) Allocate(ctx context.Context, persist idalloc.PersistFunc) (idalloc.ID, error) {
	var out idalloc.ID
	var persistErr error
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockNamespace(ctx, tx, a.seq.Namespace); err != nil {
			return fmt.Errorf("lock namespace: %w", err)
		}
		ctx = withTx(ctx, tx)

		id, err := a.scan.Peek(ctx)
		if err != nil {
			return err
		}
		if err := persist(ctx, id); err != nil {
			persistErr = err
			return err
		}
		out = id
		return nil
	})
	if err != nil {
		// Begin, lock and commit failures mean the store itself is down.
		if persistErr == nil && !errors.Is(err, idalloc.ErrSequenceSourceUnavailable) {
			err = fmt.Errorf("%w: %w", idalloc.ErrSequenceSourceUnavailable, err)
		}
		a.log.Error("id allocation failed", slog.Any("err", err))
		return idalloc.ID{}, err
	}

	a.log.Debug("id allocated", slog.String("id", out.Value))
	return out, nil
}

func lockNamespace(ctx context.Context, tx bun.Tx, namespace string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", namespace).Exec(ctx)
	return err
}
