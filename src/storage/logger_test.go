package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesLevelledEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)

	var mirror bytes.Buffer
	logger.SetMirror(&mirror)
	sub := logger.Subscribe()

	logger.Info("başladı")
	logger.Error("olmadı")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO: başladı")
	assert.Contains(t, lines[1], "ERROR: olmadı")
	assert.Equal(t, string(data), mirror.String())

	assert.Contains(t, <-sub, "INFO: başladı")
	assert.Contains(t, <-sub, "ERROR: olmadı")
}

func TestLoggerRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	logger.SetMaxSize("8 * 4")
	for i := 0; i < 5; i++ {
		logger.Debug("this line is longer than the limit")
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Greater(t, len(entries), 1)
}

func TestLoggerReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	logger, err := NewLogger(path)
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("first")
	require.NoError(t, os.Rename(path, filepath.Join(dir, "moved.log")))
	require.NoError(t, logger.Reopen())
	logger.Info("second")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "second")
	assert.NotContains(t, string(data), "first")
}

func TestEval(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), eval("10 * 1024 * 1024"))
	assert.Equal(t, int64(512), eval("512"))
	assert.Equal(t, int64(0), eval(""))
	assert.Equal(t, int64(0), eval("ten"))
	assert.Equal(t, "WARNING", WARNING.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
