package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	t.Run("set and get string", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("airtable.client_id", "client-123"))
		assert.Equal(t, "client-123", store.GetString("airtable.client_id"))
	})

	t.Run("set and get int", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set("poll.interval_seconds", 30))
		assert.Equal(t, 30, store.GetInt("poll.interval_seconds"))
	})

	t.Run("missing keys yield zero values", func(t *testing.T) {
		store, err := NewConfigStore(t.TempDir())
		require.NoError(t, err)

		assert.Empty(t, store.GetString("nope"))
		assert.Zero(t, store.GetInt("nope"))
	})

	t.Run("values persist across reopen", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Set("telegram.bot_token", "123:abc"))
		require.NoError(t, store.Set("poll.interval_seconds", 45))

		reopened, err := NewConfigStore(dir)
		require.NoError(t, err)
		assert.Equal(t, "123:abc", reopened.GetString("telegram.bot_token"))
		assert.Equal(t, 45, reopened.GetInt("poll.interval_seconds"))
	})

	t.Run("config file is written with restricted permissions", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewConfigStore(dir)
		require.NoError(t, err)
		require.NoError(t, store.Set("airtable.credential_id", "cred-1"))

		info, err := os.Stat(filepath.Join(dir, "config.toml"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}
