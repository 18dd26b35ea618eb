package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"interviewdesk/internal/domain"
)

// Memory is a size-bounded in-process cache whose entries expire after ttl.
type Memory struct {
	lru *expirable.LRU[string, []domain.Slot]
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 64
	}
	return &Memory{lru: expirable.NewLRU[string, []domain.Slot](size, nil, ttl)}
}

func (m *Memory) Get(ctx context.Context, date string) ([]domain.Slot, bool, error) {
	slots, ok := m.lru.Get(key("", date))
	if !ok {
		return nil, false, nil
	}
	return cloneSlots(slots), true, nil
}

func (m *Memory) Set(ctx context.Context, date string, slots []domain.Slot) error {
	m.lru.Add(key("", date), cloneSlots(slots))
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, dates ...string) error {
	for _, d := range dates {
		m.lru.Remove(key("", d))
	}
	return nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
