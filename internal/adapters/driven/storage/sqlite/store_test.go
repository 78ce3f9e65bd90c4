package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStateStorePersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get round trip", func(t *testing.T) {
		store := newTestStore(t)
		states := store.StateStore()
		snapshot := domain.Snapshot{{ID: "r1", Watch: `"t1"`}, {ID: "r2"}}

		require.NoError(t, states.Save(ctx, "inst-1", snapshot))
		got, err := states.Get(ctx, "inst-1")

		require.NoError(t, err)
		assert.Equal(t, snapshot, got)
	})

	t.Run("save replaces the previous snapshot", func(t *testing.T) {
		store := newTestStore(t)
		states := store.StateStore()
		require.NoError(t, states.Save(ctx, "inst-1", domain.Snapshot{{ID: "r1"}, {ID: "r2"}}))
		require.NoError(t, states.Save(ctx, "inst-1", domain.Snapshot{{ID: "r3"}}))

		got, err := states.Get(ctx, "inst-1")

		require.NoError(t, err)
		assert.Equal(t, domain.Snapshot{{ID: "r3"}}, got)
	})

	t.Run("empty snapshot survives round trip as non-nil", func(t *testing.T) {
		store := newTestStore(t)
		states := store.StateStore()
		require.NoError(t, states.Save(ctx, "inst-1", domain.Snapshot{}))

		got, err := states.Get(ctx, "inst-1")

		require.NoError(t, err)
		assert.NotNil(t, got, "empty baseline must stay distinguishable from never-polled")
		assert.Empty(t, got)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.StateStore().Get(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		store := newTestStore(t)
		states := store.StateStore()
		require.NoError(t, states.Save(ctx, "inst-1", domain.Snapshot{{ID: "r1"}}))
		require.NoError(t, states.Delete(ctx, "inst-1"))

		_, err := states.Get(ctx, "inst-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCredentialsStorePersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("save and get round trip", func(t *testing.T) {
		store := newTestStore(t)
		creds := store.CredentialsStore()
		expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		cred := domain.Credential{
			ID:           "cred-1",
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresIn:    3600,
			Expiry:       expiry,
		}

		require.NoError(t, creds.Save(ctx, cred))
		got, err := creds.Get(ctx, "cred-1")

		require.NoError(t, err)
		assert.Equal(t, "at", got.AccessToken)
		assert.Equal(t, "rt", got.RefreshToken)
		assert.Equal(t, 3600, got.ExpiresIn)
		assert.True(t, expiry.Equal(got.Expiry.UTC()))
	})

	t.Run("rotated refresh token overwrites", func(t *testing.T) {
		store := newTestStore(t)
		creds := store.CredentialsStore()
		require.NoError(t, creds.Save(ctx, domain.Credential{ID: "cred-1", AccessToken: "at-1", RefreshToken: "rt-1"}))
		require.NoError(t, creds.Save(ctx, domain.Credential{ID: "cred-1", AccessToken: "at-2", RefreshToken: "rt-2"}))

		got, err := creds.Get(ctx, "cred-1")

		require.NoError(t, err)
		assert.Equal(t, "at-2", got.AccessToken)
		assert.Equal(t, "rt-2", got.RefreshToken)
	})

	t.Run("save without id fails", func(t *testing.T) {
		store := newTestStore(t)
		err := store.CredentialsStore().Save(ctx, domain.Credential{AccessToken: "at"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("delete", func(t *testing.T) {
		store := newTestStore(t)
		creds := store.CredentialsStore()
		require.NoError(t, creds.Save(ctx, domain.Credential{ID: "cred-1", AccessToken: "at"}))
		require.NoError(t, creds.Delete(ctx, "cred-1"))

		_, err := creds.Get(ctx, "cred-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDumpState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	states := store.StateStore()
	require.NoError(t, states.Save(ctx, "inst-1", domain.Snapshot{{ID: "r1", Watch: `"t1"`}}))
	require.NoError(t, states.Save(ctx, "inst-2", domain.Snapshot{}))

	dump, err := store.DumpState(ctx)

	require.NoError(t, err)
	var parsed map[string]domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(dump), &parsed))
	assert.Len(t, parsed, 2)
	assert.Equal(t, domain.Snapshot{{ID: "r1", Watch: `"t1"`}}, parsed["inst-1"])
}
