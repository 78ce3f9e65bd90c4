package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{
		creds: make(map[string]domain.Credential),
	}
}

// Save stores or updates a credential record.
func (s *CredentialsStore) Save(_ context.Context, cred domain.Credential) error {
	if cred.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.ID] = cred
	return nil
}

// Get retrieves a credential by ID.
func (s *CredentialsStore) Get(_ context.Context, id string) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cred, nil
}

// Delete removes a credential by ID.
func (s *CredentialsStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, id)
	return nil
}
