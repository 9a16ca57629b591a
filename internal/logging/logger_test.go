package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat.log")

	require.NoError(t, Init(path, "debug"))
	Debug("hello %s", "world")
	Error("boom: %d", 42)
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"msg":"hello world"`)
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "Log Ended")
}

func TestInit_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")

	require.NoError(t, Init(path, "warn"))
	Debug("hidden")
	Warn("shown")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "chat.log"), "loud")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid log level"))
}

func TestHelpers_NoopBeforeInit(t *testing.T) {
	// Must not panic without a log file
	Debug("x")
	Info("x")
	Warn("x")
	Error("x")
	Close()
}

func TestDefaultLogPath(t *testing.T) {
	p := DefaultLogPath("/tmp/logs")
	assert.True(t, strings.HasPrefix(filepath.Base(p), "udaan-chat-"))
	assert.Equal(t, ".log", filepath.Ext(p))
}
