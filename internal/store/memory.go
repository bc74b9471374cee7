package store

import (
	"context"
	"sync"
	"time"

	"github.com/mfcabral/rulegate/internal/rule"
)

// Memory is an in-process Store. Creation order is tracked explicitly so
// List stays stable across deletes.
type Memory struct {
	mu    sync.RWMutex
	rules map[string]*rule.Rule
	order []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rules: make(map[string]*rule.Rule)}
}

func (m *Memory) Create(_ context.Context, r *rule.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rules[r.ID]; exists {
		return ErrDuplicateID
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	stored := *r
	m.rules[r.ID] = &stored
	m.order = append(m.order, r.ID)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*rule.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) List(_ context.Context) ([]*rule.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*rule.Rule, 0, len(m.rules))
	for _, id := range m.order {
		if r, ok := m.rules[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rules[id]; !ok {
		return ErrNotFound
	}
	delete(m.rules, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Close() error { return nil }
