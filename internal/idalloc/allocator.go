// Package idalloc mints human-readable sequential ids (PREFIX-0000001) from
// the highest id already stored, without a dedicated counter.
//
// The max+1 scan is not a unique-id generator on its own: two allocations
// that read the maximum before either writes compute the same value. MaxScan
// closes that window inside one process when built WithSingleWriter. Stores
// that can lock natively (see the postgres SequenceAllocator) close it across
// processes. Anything else runs with the race and logs ErrSequenceRaceRisk.
package idalloc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrSequenceSourceUnavailable = errors.New("sequence source unavailable")
	ErrSequenceRaceRisk          = errors.New("sequence race risk")
)

// PersistFunc stores the record carrying id. The id counts as consumed once
// it returns nil.
type PersistFunc func(ctx context.Context, id ID) error

type Allocator interface {
	Allocate(ctx context.Context, persist PersistFunc) (ID, error)
}

// MaxSource reports the highest id stored in a namespace, either as a bare
// record number or in formatted form.
type MaxSource interface {
	LatestSequence(ctx context.Context) (raw string, found bool, err error)
}

type MaxScan struct {
	seq    Sequence
	source MaxSource
	log    *slog.Logger
	mu     *sync.Mutex
}

type Option func(*MaxScan)

// WithSingleWriter serializes allocations in this process from the max read
// until persist returns.
func WithSingleWriter() Option {
	return func(a *MaxScan) {
		a.mu = &sync.Mutex{}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(a *MaxScan) {
		if log != nil {
			a.log = log
		}
	}
}

func NewMaxScan(seq Sequence, source MaxSource, opts ...Option) *MaxScan {
	a := &MaxScan{
		seq:    seq,
		source: source,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(slog.String("component", "idalloc"), slog.String("namespace", seq.Namespace))
	return a
}

// Peek computes the id the next allocation would receive without persisting.
func (a *MaxScan) Peek(ctx context.Context) (ID, error) {
	raw, found, err := a.source.LatestSequence(ctx)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %w", ErrSequenceSourceUnavailable, err)
	}
	if !found {
		return a.seq.First(), nil
	}
	n, err := a.seq.Parse(raw)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %w", ErrSequenceSourceUnavailable, err)
	}
	return a.seq.Next(n), nil
}

func (a *MaxScan) Allocate(ctx context.Context, persist PersistFunc) (ID, error) {
	if a.mu != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
	} else {
		a.log.Warn("allocating without a single writer", slog.Any("advisory", ErrSequenceRaceRisk))
	}

	id, err := a.Peek(ctx)
	if err != nil {
		a.log.Error("max id lookup failed", slog.Any("err", err))
		return ID{}, err
	}

	if err := persist(ctx, id); err != nil {
		return ID{}, err
	}

	a.log.Debug("id allocated", slog.String("id", id.Value))
	return id, nil
}
