// Package cache stores computed slot days for a short time so repeated
// queries for the same date skip the calendar round trip.
package cache

import (
	"context"
	"fmt"

	"interviewdesk/internal/domain"
)

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(ctx context.Context, date string) ([]domain.Slot, bool, error) {
	return nil, false, nil
}

func (Noop) Set(ctx context.Context, date string, slots []domain.Slot) error {
	return nil
}

func (Noop) Invalidate(ctx context.Context, dates ...string) error {
	return nil
}

func key(prefix, date string) string {
	return fmt.Sprintf("%sslots:%s", prefix, date)
}

func cloneSlots(slots []domain.Slot) []domain.Slot {
	if slots == nil {
		return nil
	}
	out := make([]domain.Slot, len(slots))
	copy(out, slots)
	return out
}
