// Package memory provides in-memory store implementations, used by
// tests and for ephemeral runs where nothing should outlive the process.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
type StateStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		snapshots: make(map[string]domain.Snapshot),
	}
}

// Save stores or replaces the snapshot for a trigger instance.
func (s *StateStore) Save(_ context.Context, triggerID string, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[triggerID] = snapshot
	return nil
}

// Get retrieves the snapshot for a trigger instance.
func (s *StateStore) Get(_ context.Context, triggerID string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[triggerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snapshot, nil
}

// Delete removes the snapshot for a trigger instance.
func (s *StateStore) Delete(_ context.Context, triggerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, triggerID)
	return nil
}
