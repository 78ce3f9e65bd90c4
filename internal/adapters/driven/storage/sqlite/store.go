// Package sqlite provides durable host-side storage for snapshots and
// credentials. The core never sees this package: it hands state in and
// out as opaque values, and the CLI host parks them here between
// invocations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
)

// Store is a SQLite-backed storage exposing the host store interfaces
// through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pollbridge/data/state.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pollbridge", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	// WAL mode for better concurrency between the scheduler loop and
	// ad-hoc CLI invocations.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StateStore returns a StateStore interface backed by this store.
func (s *Store) StateStore() driven.StateStore {
	return &stateStore{store: s}
}

// CredentialsStore returns a CredentialsStore interface backed by this store.
func (s *Store) CredentialsStore() driven.CredentialsStore {
	return &credentialsStore{store: s}
}

// migrate creates the schema when missing.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trigger_state (
			trigger_id TEXT PRIMARY KEY,
			snapshot   TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS credentials (
			id            TEXT PRIMARY KEY,
			access_token  TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			expires_in    INTEGER NOT NULL DEFAULT 0,
			expiry        DATETIME
		);
	`)
	return err
}

// stateStore implements driven.StateStore over the shared connection.
type stateStore struct {
	store *Store
}

// Save stores or replaces the snapshot for a trigger instance.
func (s *stateStore) Save(ctx context.Context, triggerID string, snapshot domain.Snapshot) error {
	data, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO trigger_state (trigger_id, snapshot, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(trigger_id) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		triggerID, string(data), time.Now().UTC())
	return err
}

// Get retrieves the snapshot for a trigger instance.
func (s *stateStore) Get(ctx context.Context, triggerID string) (domain.Snapshot, error) {
	var data string
	err := s.store.db.QueryRowContext(ctx,
		`SELECT snapshot FROM trigger_state WHERE trigger_id = ?`, triggerID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return domain.DecodeSnapshot([]byte(data))
}

// Delete removes the snapshot for a trigger instance.
func (s *stateStore) Delete(ctx context.Context, triggerID string) error {
	_, err := s.store.db.ExecContext(ctx,
		`DELETE FROM trigger_state WHERE trigger_id = ?`, triggerID)
	return err
}

// credentialsStore implements driven.CredentialsStore.
type credentialsStore struct {
	store *Store
}

// Save stores or updates a credential record.
func (s *credentialsStore) Save(ctx context.Context, cred domain.Credential) error {
	if cred.ID == "" {
		return domain.ErrInvalidInput
	}
	var expiry any
	if !cred.Expiry.IsZero() {
		expiry = cred.Expiry.UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, refresh_token, expires_in, expiry)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_in = excluded.expires_in,
			expiry = excluded.expiry`,
		cred.ID, cred.AccessToken, cred.RefreshToken, cred.ExpiresIn, expiry)
	return err
}

// Get retrieves a credential by ID.
func (s *credentialsStore) Get(ctx context.Context, id string) (*domain.Credential, error) {
	var cred domain.Credential
	var expiry sql.NullTime
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, access_token, refresh_token, expires_in, expiry
		FROM credentials WHERE id = ?`, id).
		Scan(&cred.ID, &cred.AccessToken, &cred.RefreshToken, &cred.ExpiresIn, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		cred.Expiry = expiry.Time
	}
	return &cred, nil
}

// Delete removes a credential by ID.
func (s *credentialsStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = ?`, id)
	return err
}

// DumpState renders all stored trigger snapshots as indented JSON.
// Used by the CLI status command.
func (s *Store) DumpState(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT trigger_id, snapshot FROM trigger_state ORDER BY trigger_id`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, snapshot string
		if err := rows.Scan(&id, &snapshot); err != nil {
			return "", err
		}
		out[id] = json.RawMessage(snapshot)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	return string(data), err
}
