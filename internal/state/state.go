// Package state persists the sync engine's durable state document.
//
// The state is a single JSON document that is always rewritten whole:
// the store marshals the full document to a temp file in the same
// directory and renames it over the previous one, so a crash mid-write
// leaves either the old or the new complete document, never a mix.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// MaxHistory bounds the persisted analysis history. Appending past the
// bound drops the oldest entries.
const MaxHistory = 50

// SyncState is the process-wide durable state. It is loaded once at
// startup and rewritten after every batch cycle.
type SyncState struct {
	LastSync         time.Time         `json:"lastSync"`
	FileFingerprints map[string]string `json:"fileFingerprints"`
	LastMajorUpdate  time.Time         `json:"lastMajorUpdate"`
	AnalysisHistory  []ReportSummary   `json:"analysisHistory"`
	Statistics       Statistics        `json:"statistics"`
}

// Statistics are monotonic counters across the life of the state file.
type Statistics struct {
	TotalSyncs      int       `json:"totalSyncs"`
	TotalChanges    int       `json:"totalChanges"`
	LastHealthCheck time.Time `json:"lastHealthCheck"`
}

// ReportSummary is the bounded-history record of one analysis run. The
// full rendered report lives in its own document; only the summary is
// carried in the state.
type ReportSummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"`
	ChangeCount int       `json:"changeCount"`
	Document    string    `json:"document,omitempty"`
}

// New returns an empty state ready for first use.
func New() *SyncState {
	return &SyncState{
		FileFingerprints: make(map[string]string),
		AnalysisHistory:  []ReportSummary{},
	}
}

// AppendHistory adds a summary, dropping the oldest entries beyond
// MaxHistory.
func (s *SyncState) AppendHistory(sum ReportSummary) {
	s.AnalysisHistory = append(s.AnalysisHistory, sum)
	if n := len(s.AnalysisHistory); n > MaxHistory {
		s.AnalysisHistory = s.AnalysisHistory[n-MaxHistory:]
	}
}

// Fingerprint returns the hex SHA-256 of file content.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Store reads and writes the state document at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document location.
func (st *Store) Path() string { return st.path }

// Load reads the persisted state. A missing or unreadable document
// yields a fresh empty state, never an error, so a corrupt file
// cannot prevent startup.
func (st *Store) Load() *SyncState {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to read state %s: %v (starting fresh)", st.path, err)
		}
		return New()
	}

	var s SyncState
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("Warning: failed to parse state %s: %v (starting fresh)", st.path, err)
		return New()
	}
	if s.FileFingerprints == nil {
		s.FileFingerprints = make(map[string]string)
	}
	return &s
}

// Persist rewrites the whole document atomically. On failure the
// caller keeps the in-memory state for the next attempt.
func (st *Store) Persist(s *SyncState) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpName, st.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}
