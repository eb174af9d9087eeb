package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ConsoleFiltersPerTitleMessages(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger, err := Setup(Config{
		File:         filepath.Join(dir, "output.log"),
		Level:        "debug",
		ConsoleLevel: "info",
		MaxSizeMB:    1,
		MaxBackups:   5,
	}, &console)
	require.NoError(t, err)

	logger.Info("starting export")
	logger.Debug(MsgProcessedMovie, "title", "Heat")
	logger.Error(MsgMovieError, "title", "Alien")
	logger.Debug("debug detail")
	require.NoError(t, logger.Close())

	out := console.String()
	assert.Contains(t, out, "starting export")
	assert.NotContains(t, out, "Heat")
	assert.NotContains(t, out, "Alien")
	assert.NotContains(t, out, "debug detail")

	data, err := os.ReadFile(filepath.Join(dir, "output.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, MsgProcessedMovie, entry["msg"])
	assert.Equal(t, "Heat", entry["title"])
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestSetup_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	logger, err := Setup(Config{ConsoleLevel: "warn"}, &console)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")
	require.NoError(t, logger.Close())

	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "loud")
}

func TestTeeHandler_WithAttrsReachesAllSinks(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewTeeHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	)).With("component", "export")

	logger.Info("hello")

	assert.Contains(t, a.String(), "component=export")
	assert.Contains(t, b.String(), "component=export")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestArchiveBackups(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "output.log")
	archive := filepath.Join(dir, "old_logs")

	for _, name := range []string{
		"output.log",
		"output-2024-01-01T10-00-00.000.log",
		"output-2024-01-02T10-00-00.000.log",
		"unrelated.log",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.MkdirAll(archive, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(archive, "output-2024-01-01T10-00-00.000.log"), []byte("older"), 0o644))

	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	moved, err := ArchiveBackups(logFile, archive, now, NullLogger())
	require.NoError(t, err)
	assert.Len(t, moved, 2)

	assert.FileExists(t, logFile)
	assert.FileExists(t, filepath.Join(dir, "unrelated.log"))
	assert.NoFileExists(t, filepath.Join(dir, "output-2024-01-01T10-00-00.000.log"))
	assert.FileExists(t, filepath.Join(archive, "output-2024-01-02T10-00-00.000.log"))
	assert.FileExists(t, filepath.Join(archive, "output-2024-01-01T10-00-00.000_20240203_040506.log"))

	kept, err := os.ReadFile(filepath.Join(archive, "output-2024-01-01T10-00-00.000.log"))
	require.NoError(t, err)
	assert.Equal(t, "older", string(kept))
}

func TestArchiveBackups_NothingToMove(t *testing.T) {
	dir := t.TempDir()

	moved, err := ArchiveBackups(filepath.Join(dir, "output.log"), filepath.Join(dir, "old_logs"), time.Now(), NullLogger())

	require.NoError(t, err)
	assert.Empty(t, moved)
	assert.DirExists(t, filepath.Join(dir, "old_logs"))
}
