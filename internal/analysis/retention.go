package analysis

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sweeper removes analysis reports older than the retention window.
type Sweeper struct {
	dir    string
	maxAge time.Duration
}

// NewSweeper builds a sweeper over dir with the given maximum report
// age. A zero or negative maxAge disables sweeping.
func NewSweeper(dir string, maxAge time.Duration) *Sweeper {
	return &Sweeper{dir: dir, maxAge: maxAge}
}

// Sweep deletes report files whose modification time is older than
// now minus the retention window, and returns how many were removed.
// Age is judged by mtime, not by the timestamp embedded in the file
// name. A missing report directory is not an error.
func (s *Sweeper) Sweep(now time.Time) (int, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "analysis-") || !strings.HasSuffix(name, ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, name)
		if err := os.Remove(path); err != nil {
			log.Printf("Warning: failed to remove old report %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}
