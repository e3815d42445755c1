package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, cleanup, err := New(path, "info")
	require.NoError(t, err)
	defer cleanup()

	logger.Named("chat").Info("session started", zap.String("subject", "Science"))
	logger.Debug("hidden at info level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "session started", entry["message"])
	assert.Equal(t, "chat", entry["logger"])
	assert.Equal(t, "Science", entry["subject"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(filepath.Join(t.TempDir(), "app.log"), "loud")
	require.Error(t, err)
}

func TestCleanupFlushesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, cleanup, err := New(path, "debug")
	require.NoError(t, err)
	logger.Warn("database unavailable")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "database unavailable")
}
