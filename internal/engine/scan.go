package engine

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/tradewind/docsync/internal/state"
	"github.com/tradewind/docsync/internal/tracker"
)

// DetectOfflineChanges compares the watched tree against the stored
// fingerprints and records synthetic change events for everything that
// moved while the process was down. Returns the number of records
// appended. The change-log filter still applies, so ignored paths stay
// ignored.
//
// Also called from the periodic rescan ticker in watch mode, so the
// fingerprint map is read under the engine lock.
func (e *Engine) DetectOfflineChanges() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	seen := make(map[string]bool)
	recorded := 0

	for _, dir := range e.cfg.WatchDirs {
		base := filepath.Join(e.root, dir)
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			rel := e.relPath(path)
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil
			}
			fp := state.Fingerprint(data)
			seen[rel] = true

			prev, known := e.st.FileFingerprints[rel]
			switch {
			case !known:
				if e.changes.RecordAt(rel, tracker.KindAdded, now) {
					recorded++
				}
			case prev != fp:
				if e.changes.RecordAt(rel, tracker.KindModified, now) {
					recorded++
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("Warning: scan of %s failed: %v", base, err)
		}
	}

	// Fingerprinted paths that no longer exist were deleted offline.
	for rel := range e.st.FileFingerprints {
		if seen[rel] {
			continue
		}
		if _, err := os.Stat(e.absPath(rel)); !os.IsNotExist(err) {
			continue
		}
		if e.changes.RecordAt(rel, tracker.KindDeleted, now) {
			recorded++
		}
	}
	return recorded
}
