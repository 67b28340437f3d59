package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyWriterRollsByDay(t *testing.T) {
	dir := t.TempDir()
	w, err := NewDailyWriter(dir)
	require.NoError(t, err)

	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return day }
	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)

	w.now = func() time.Time { return day.Add(24 * time.Hour) }
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "planner_2025-06-01.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "planner_2025-06-02.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(second))
}

func TestNewZapLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewZapLogger(Options{Dir: dir})
	require.NoError(t, err)
	logger.Info("hello planner")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, DailyFilename(time.Now())))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello planner")
}
