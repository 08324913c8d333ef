// Package store provides an in-memory StudentStore for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/brightpath/fee-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	students map[string]ledger.Student
}

func NewMemory() *Memory {
	return &Memory{students: make(map[string]ledger.Student)}
}

var _ ledger.StudentStore = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, id string) (ledger.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return ledger.Student{}, ledger.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) List(_ context.Context) ([]ledger.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Create(_ context.Context, s ledger.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[s.ID]; ok {
		return ledger.ErrStudentExists
	}
	s.Version = 1
	m.students[s.ID] = s.Clone()
	return nil
}

func (m *Memory) Update(_ context.Context, s ledger.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.students[s.ID]
	if !ok {
		return ledger.ErrStudentNotFound
	}
	if stored.Version != s.Version {
		return ledger.ErrConcurrentModification
	}
	s.Version++
	m.students[s.ID] = s.Clone()
	return nil
}
