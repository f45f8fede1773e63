package retention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	logger := zerolog.Nop()

	touch(t, filepath.Join(dir, "backup_old.db"), now.AddDate(0, 0, -40))
	touch(t, filepath.Join(dir, "backup_new.db"), now.AddDate(0, 0, -5))
	touch(t, filepath.Join(dir, "notes_old.txt"), now.AddDate(0, 0, -40))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "backup_dir"), 0o755))

	assert.Equal(t, 0, Prune(dir, "backup_", 0, now, &logger))
	assert.Equal(t, 1, Prune(dir, "backup_", 30, now, &logger))

	_, err := os.Stat(filepath.Join(dir, "backup_old.db"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(dir, "backup_new.db"))
	assert.FileExists(t, filepath.Join(dir, "notes_old.txt"))
	assert.DirExists(t, filepath.Join(dir, "backup_dir"))
}

func TestPrune_MissingDir(t *testing.T) {
	logger := zerolog.Nop()
	assert.Equal(t, 0, Prune(filepath.Join(t.TempDir(), "missing"), "x", 1, time.Now(), &logger))
}
