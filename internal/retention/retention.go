// Package retention prunes timestamped artefacts from a directory.
package retention

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Prune deletes regular files in dir whose name starts with prefix and whose
// modification time is more than days before now. It returns the number of
// removed files. days <= 0 disables pruning.
func Prune(dir, prefix string, days int, now time.Time, logger *zerolog.Logger) int {
	if days <= 0 {
		return 0
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Error().Err(err).Str("dir", dir).Msg("Failed to read directory for cleanup")
		return 0
	}

	cutoff := now.AddDate(0, 0, -days)
	removed := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), prefix) {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, file.Name())); err != nil {
			logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old file")
			continue
		}
		logger.Info().Str("file", file.Name()).Msg("Deleted old file")
		removed++
	}
	return removed
}
