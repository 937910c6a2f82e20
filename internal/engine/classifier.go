// Package engine runs the sync cycle: it drains the pending change
// batch, regenerates documentation artifacts, classifies the change
// volume, and persists the updated sync state. Watch mode wraps the
// same cycle in a debounced event loop.
package engine

import (
	"time"

	"github.com/tradewind/docsync/internal/tracker"
)

// Classifier decides whether the current change volume constitutes a
// major update. The decision is over the full change log (consumed
// records included), not just the pending batch: many small batches
// inside the window add up.
type Classifier struct {
	// Threshold is the change count at which the window tips to
	// major. The boundary is inclusive: exactly Threshold changes is
	// major.
	Threshold int

	// Window is the rolling time window ending at the classification
	// instant.
	Window time.Duration
}

// IsMajorUpdate reports whether the record count within [now-Window,
// now] has reached the threshold.
func (c Classifier) IsMajorUpdate(log *tracker.Log, now time.Time) bool {
	if c.Threshold < 1 || c.Window <= 0 {
		return false
	}
	return log.CountSince(now.Add(-c.Window), now) >= c.Threshold
}
