// Package tracker records file-system change events as immutable
// change records.
//
// Records live in an append-only log; a cursor marks how far batch
// processing has consumed them. Nothing is mutated in place: a record
// is "processed" purely by the cursor moving past it. The full log
// (consumed or not) remains available to the major-update classifier,
// which counts changes over a rolling time window.
package tracker

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind classifies a change event.
type Kind string

const (
	KindAdded    Kind = "added"
	KindModified Kind = "modified"
	KindDeleted  Kind = "deleted"
)

// ChangeRecord is an immutable note that a path changed at a time.
type ChangeRecord struct {
	Path      string
	Kind      Kind
	Timestamp time.Time
}

// Filter decides which paths produce change records. Paths must pass
// the extension allow-list and must not match any ignore glob.
type Filter struct {
	// Extensions is the allow-list (".ts", ".py", ...). Empty allows
	// every extension.
	Extensions []string

	// IgnoreGlobs are doublestar patterns matched against the
	// slash-separated path.
	IgnoreGlobs []string
}

// Allow reports whether path should be tracked.
func (f *Filter) Allow(path string) bool {
	p := filepath.ToSlash(path)

	if len(f.Extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(p))
		ok := false
		for _, allowed := range f.Extensions {
			if ext == strings.ToLower(allowed) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	for _, glob := range f.IgnoreGlobs {
		if matched, err := doublestar.Match(glob, p); err == nil && matched {
			return false
		}
	}
	return true
}

// Log is the append-only change record arena plus the processed
// cursor. Safe for concurrent use: the watcher appends while the
// engine reads and advances the cursor.
type Log struct {
	mu      sync.Mutex
	records []ChangeRecord
	cursor  int
	filter  Filter
	now     func() time.Time
}

// NewLog creates an empty log with the given filter.
func NewLog(filter Filter) *Log {
	return &Log{filter: filter, now: time.Now}
}

// Record appends a change record for path unless the filter rejects
// it. Returns true if a record was appended. Multiple records for the
// same path are expected; deduplication is the batch processor's
// concern.
func (l *Log) Record(path string, kind Kind) bool {
	if !l.filter.Allow(path) {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, ChangeRecord{
		Path:      filepath.ToSlash(path),
		Kind:      kind,
		Timestamp: l.now(),
	})
	return true
}

// RecordAt appends a record with an explicit timestamp. Used by the
// offline-change scanner and by tests.
func (l *Log) RecordAt(path string, kind Kind, ts time.Time) bool {
	if !l.filter.Allow(path) {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, ChangeRecord{
		Path:      filepath.ToSlash(path),
		Kind:      kind,
		Timestamp: ts,
	})
	return true
}

// Pending returns a copy of all unconsumed records in arrival order.
func (l *Log) Pending() []ChangeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ChangeRecord, len(l.records)-l.cursor)
	copy(out, l.records[l.cursor:])
	return out
}

// PendingCount returns the number of unconsumed records.
func (l *Log) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records) - l.cursor
}

// MarkProcessed advances the cursor past the first n pending records.
func (l *Log) MarkProcessed(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cursor += n
	if l.cursor > len(l.records) {
		l.cursor = len(l.records)
	}
}

// CountSince counts every record, consumed or not, whose timestamp
// falls within [cutoff, now]. The classifier uses this to measure
// cumulative change volume over its rolling window.
func (l *Log) CountSince(cutoff, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	// Records arrive in time order; scan from the tail.
	for i := len(l.records) - 1; i >= 0; i-- {
		ts := l.records[i].Timestamp
		if ts.Before(cutoff) {
			break
		}
		if !ts.After(now) {
			count++
		}
	}
	return count
}

// Len returns the total record count, consumed included.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// LatestPerPath reduces a batch to the most recent record per path,
// preserving arrival order of first appearance. The generator works on
// this reduced view: only the latest state of a path matters.
func LatestPerPath(batch []ChangeRecord) []ChangeRecord {
	latest := make(map[string]int, len(batch))
	order := make([]string, 0, len(batch))
	for i, rec := range batch {
		if _, seen := latest[rec.Path]; !seen {
			order = append(order, rec.Path)
		}
		latest[rec.Path] = i
	}
	out := make([]ChangeRecord, 0, len(order))
	for _, p := range order {
		out = append(out, batch[latest[p]])
	}
	return out
}
