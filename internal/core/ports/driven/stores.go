package driven

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// StateStore persists trigger snapshots between invocations. The core
// never touches storage itself; the host serialises snapshot
// read-modify-write per trigger instance through this port.
type StateStore interface {
	// Save stores or replaces the snapshot for a trigger instance.
	Save(ctx context.Context, triggerID string, snapshot domain.Snapshot) error

	// Get retrieves the snapshot for a trigger instance. Returns
	// domain.ErrNotFound when the trigger has never polled.
	Get(ctx context.Context, triggerID string) (domain.Snapshot, error)

	// Delete removes the snapshot for a trigger instance.
	Delete(ctx context.Context, triggerID string) error
}

// CredentialsStore persists credentials on behalf of the host.
type CredentialsStore interface {
	// Save stores or updates a credential record.
	Save(ctx context.Context, cred domain.Credential) error

	// Get retrieves a credential by ID. Returns domain.ErrNotFound when
	// no such credential exists.
	Get(ctx context.Context, id string) (*domain.Credential, error)

	// Delete removes a credential by ID.
	Delete(ctx context.Context, id string) error
}

// ConfigStore provides read access to host configuration values.
type ConfigStore interface {
	// GetString retrieves a string value, empty when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, zero when unset.
	GetInt(key string) int

	// Set stores a configuration value.
	Set(key string, value any) error
}
