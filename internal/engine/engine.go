package engine

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tradewind/docsync/internal/analysis"
	"github.com/tradewind/docsync/internal/config"
	"github.com/tradewind/docsync/internal/generate"
	"github.com/tradewind/docsync/internal/git"
	"github.com/tradewind/docsync/internal/state"
	"github.com/tradewind/docsync/internal/tracker"
)

// commitInterval rate-limits auto-commits so a storm of small sync
// cycles cannot flood the repository history.
const commitInterval = time.Minute

// Engine owns the sync cycle. Cycles run on the goroutine that calls
// Run or RunCycle; the rescan and health-check tickers run on their
// own goroutines, so every access to the shared sync state goes
// through mu.
type Engine struct {
	root    string
	cfg     *config.Config
	changes *tracker.Log
	gen     *generate.Generator
	store   *state.Store

	// mu guards st, including its FileFingerprints map.
	mu sync.Mutex
	st *state.SyncState

	orch *analysis.Orchestrator

	// vcs is nil when git integration is disabled or git is
	// unavailable; every VCS step is best-effort.
	vcs *git.Git

	classifier    Classifier
	commitLimiter *rate.Limiter
	notifyCh      chan struct{}
	now           func() time.Time
}

// New assembles an engine. The git handle may be nil.
func New(root string, cfg *config.Config, changes *tracker.Log, gen *generate.Generator,
	store *state.Store, st *state.SyncState, orch *analysis.Orchestrator, vcs *git.Git) *Engine {
	return &Engine{
		root:    root,
		cfg:     cfg,
		changes: changes,
		gen:     gen,
		store:   store,
		st:      st,
		orch:    orch,
		vcs:     vcs,
		classifier: Classifier{
			Threshold: cfg.Analysis.MajorUpdateDetection.FileThreshold,
			Window:    cfg.MajorUpdateWindow(),
		},
		commitLimiter: rate.NewLimiter(rate.Every(commitInterval), 1),
		notifyCh:      make(chan struct{}, 1),
		now:           time.Now,
	}
}

// State returns the engine's in-memory sync state. The pointer is not
// safe to read while the engine's goroutines are still running; use it
// from one-shot commands or after Run has returned.
func (e *Engine) State() *state.SyncState { return e.st }

// Notify signals that a change event arrived. Non-blocking: a signal
// already pending is enough, the debounce timer only needs to restart.
func (e *Engine) Notify() {
	select {
	case e.notifyCh <- struct{}{}:
	default:
	}
}

// Run is the watch-mode event loop. Each change notification restarts
// the debounce timer; a cycle fires only after the tree has been quiet
// for the full debounce window. Returns when ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			if armed {
				timer.Stop()
			}
			return nil
		case <-e.notifyCh:
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(e.cfg.Debounce())
			armed = true
		case <-timer.C:
			armed = false
			e.RunCycle(ctx)
		}
	}
}

// CycleResult summarizes one sync cycle.
type CycleResult struct {
	Processed  int
	Kind       analysis.Kind
	ReportPath string
	Rules      []generate.RuleResult
}

// RunCycle processes the pending change batch. An empty batch is a
// no-op: no artifacts are touched and the state document is not
// rewritten. Failures inside the cycle (a rule, the analysis tools,
// state persistence, git) are logged and never abort the cycle.
func (e *Engine) RunCycle(ctx context.Context) CycleResult {
	pending := e.changes.Pending()
	if len(pending) == 0 {
		return CycleResult{Kind: analysis.KindRoutine}
	}
	now := e.now()

	results := e.gen.Run(pending)

	reduced := tracker.LatestPerPath(pending)
	changePaths := make([]string, 0, len(reduced))
	for _, rec := range reduced {
		changePaths = append(changePaths, e.relPath(rec.Path))
	}

	res := CycleResult{Processed: len(pending), Kind: analysis.KindRoutine, Rules: results}
	if e.classifier.IsMajorUpdate(e.changes, now) {
		res.Kind = analysis.KindMajor
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if res.Kind == analysis.KindMajor && e.cfg.Analysis.RunAfterChanges && e.orch != nil {
		report := e.orch.RunAnalysis(ctx, analysis.KindMajor, changePaths)
		doc, err := e.orch.WriteReport(report)
		if err != nil {
			log.Printf("Warning: failed to write analysis report: %v", err)
		}
		res.ReportPath = doc
		e.st.LastMajorUpdate = now
		e.st.AppendHistory(state.ReportSummary{
			ID:          report.ID,
			Timestamp:   report.Timestamp,
			Kind:        string(report.Kind),
			ChangeCount: len(pending),
			Document:    doc,
		})
	}

	e.changes.MarkProcessed(len(pending))

	e.st.LastSync = now
	e.st.Statistics.TotalSyncs++
	e.st.Statistics.TotalChanges += len(pending)
	e.updateFingerprints(reduced)

	if err := e.store.Persist(e.st); err != nil {
		// Keep the in-memory state; the next cycle retries the write.
		log.Printf("Warning: failed to persist sync state: %v", err)
	}

	e.autoCommit(ctx, results, changePaths, now)
	return res
}

// RunMajorAnalysis runs the full analysis pass unconditionally,
// independent of change volume. Used by the manual full-update
// command.
func (e *Engine) RunMajorAnalysis(ctx context.Context) (string, error) {
	report := e.orch.RunAnalysis(ctx, analysis.KindMajor, nil)
	doc, err := e.orch.WriteReport(report)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.st.LastMajorUpdate = now
	e.st.AppendHistory(state.ReportSummary{
		ID:        report.ID,
		Timestamp: report.Timestamp,
		Kind:      string(report.Kind),
		Document:  doc,
	})
	if err := e.store.Persist(e.st); err != nil {
		log.Printf("Warning: failed to persist sync state: %v", err)
	}
	return doc, nil
}

// RunHealthCheck invokes only the health collaborator and records the
// check time in the state.
func (e *Engine) RunHealthCheck(ctx context.Context) (analysis.Result, error) {
	res, err := e.orch.RunCategory(ctx, "health")
	if err != nil {
		return res, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.st.Statistics.LastHealthCheck = e.now()
	if err := e.store.Persist(e.st); err != nil {
		log.Printf("Warning: failed to persist sync state: %v", err)
	}
	return res, nil
}

// updateFingerprints refreshes the stored content hashes for the
// processed batch. Deleted paths drop out of the map.
func (e *Engine) updateFingerprints(reduced []tracker.ChangeRecord) {
	for _, rec := range reduced {
		rel := e.relPath(rec.Path)
		if rec.Kind == tracker.KindDeleted {
			delete(e.st.FileFingerprints, rel)
			continue
		}
		data, err := os.ReadFile(e.absPath(rec.Path))
		if err != nil {
			// The file may have vanished between the event and the
			// cycle; leave the stale fingerprint for the next scan.
			continue
		}
		e.st.FileFingerprints[rel] = state.Fingerprint(data)
	}
}

// autoCommit stages and commits the regenerated artifacts plus the
// state document. Every step is best-effort: a VCS failure is logged
// and the cycle's other effects stand.
func (e *Engine) autoCommit(ctx context.Context, results []generate.RuleResult, changePaths []string, now time.Time) {
	gi := e.cfg.GitIntegration
	if e.vcs == nil || !gi.Enabled || !gi.AutoCommit {
		return
	}
	if !e.commitLimiter.Allow() {
		return
	}
	if !e.vcs.IsRepo(ctx, e.root) {
		return
	}

	var stage []string
	for _, r := range results {
		if r.Err == nil && r.Artifact != "" {
			stage = append(stage, r.Artifact)
		}
	}
	if len(stage) == 0 {
		return
	}
	stage = append(stage, e.cfg.StateFile)

	if err := e.vcs.Stage(ctx, e.root, stage); err != nil {
		log.Printf("Warning: git stage failed: %v", err)
		return
	}
	changed, err := e.vcs.HasChanges(ctx, e.root)
	if err != nil {
		log.Printf("Warning: git status failed: %v", err)
		return
	}
	if !changed {
		return
	}

	msg := git.BuildCommitMessage(gi.CommitMessage, changePaths, now)
	hash, err := e.vcs.Commit(ctx, e.root, msg)
	if err != nil {
		log.Printf("Warning: git commit failed: %v", err)
		return
	}
	log.Printf("Committed documentation update %s", hash[:min(8, len(hash))])

	if gi.AutoPush {
		if err := e.vcs.Push(ctx, e.root, gi.Branch); err != nil {
			log.Printf("Warning: git push failed: %v", err)
		}
	}
}

func (e *Engine) relPath(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(e.root, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

func (e *Engine) absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.root, p)
}
