package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})

	t.Run("silent by default", func(t *testing.T) {
		buf.Reset()
		SetVerbose(false)

		Debug("hidden %d", 1)
		Info("hidden")
		Warn("hidden")

		assert.Empty(t, buf.String())
	})

	t.Run("verbose mode prints with level prefixes", func(t *testing.T) {
		buf.Reset()
		SetVerbose(true)
		assert.True(t, IsVerbose())

		Debug("poll %s", "inst-1")
		Info("fired %d events", 2)
		Warn("refresh failed")

		out := buf.String()
		assert.Contains(t, out, "[DEBUG] poll inst-1\n")
		assert.Contains(t, out, "[INFO] fired 2 events\n")
		assert.Contains(t, out, "[WARN] refresh failed\n")
	})
}
