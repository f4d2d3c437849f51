package browser

import (
	"os"
	"path/filepath"
	"time"

	"outlook-email-extractor/internal/logging"
)

// StartCleanup starts a background goroutine that cleans up old Rod temp directories
func StartCleanup() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if activeRodSessions.Load() > 0 {
				logging.Log.Info("Skipping /tmp cleanup: active Rod sessions detected")
				continue
			}
			cleanupTempDirs()
		}
	}()
}

// cleanupTempDirs removes leftover profiles of sessions that did not shut down cleanly
func cleanupTempDirs() int {
	pattern := filepath.Join(os.TempDir(), tempDirPattern)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logging.Log.WithError(err).Warn("Failed to glob temp directories")
		return 0
	}

	removed := 0
	for _, dir := range matches {
		if err := os.RemoveAll(dir); err != nil {
			logging.Log.WithError(err).Warnf("Failed to remove temp dir: %s", dir)
			continue
		}
		logging.Log.Infof("Cleaned up temp dir: %s", dir)
		removed++
	}
	return removed
}

// GetActiveSessionCount returns the current number of active Rod sessions (for testing)
func GetActiveSessionCount() int32 {
	return activeRodSessions.Load()
}
