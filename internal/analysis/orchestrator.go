package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Orchestrator runs the configured collaborators and persists the
// compiled reports under the report directory.
type Orchestrator struct {
	collaborators []Collaborator
	reportDir     string
	now           func() time.Time
}

// NewOrchestrator builds an orchestrator writing reports to reportDir.
func NewOrchestrator(reportDir string, collaborators ...Collaborator) *Orchestrator {
	return &Orchestrator{
		collaborators: collaborators,
		reportDir:     reportDir,
		now:           time.Now,
	}
}

// RunAnalysis invokes every collaborator in order and assembles the
// report. Collaborator failures are recorded in their results; the
// report itself always succeeds.
func (o *Orchestrator) RunAnalysis(ctx context.Context, kind Kind, changePaths []string) Report {
	report := Report{
		ID:          uuid.NewString(),
		Timestamp:   o.now().UTC(),
		Kind:        kind,
		ChangePaths: changePaths,
	}
	for _, c := range o.collaborators {
		report.Results = append(report.Results, c.Run(ctx))
	}
	return report
}

// RunCategory invokes only the collaborator with the given category.
// It returns an error when no such collaborator is configured.
func (o *Orchestrator) RunCategory(ctx context.Context, category string) (Result, error) {
	for _, c := range o.collaborators {
		if c.Category() == category {
			return c.Run(ctx), nil
		}
	}
	return Result{}, fmt.Errorf("no %s collaborator configured", category)
}

// WriteReport compiles the report to markdown and writes it into the
// report directory, creating the directory if needed. It returns the
// written file path.
func (o *Orchestrator) WriteReport(r Report) (string, error) {
	if err := os.MkdirAll(o.reportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	name := fmt.Sprintf("analysis-%s-%s.md", r.ID, r.Timestamp.Format("20060102-150405"))
	path := filepath.Join(o.reportDir, name)
	if err := os.WriteFile(path, []byte(Compile(r)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
