// docsync keeps generated documentation in step with source changes.
//
// Watch mode monitors the configured source directories, batches
// change events behind a debounce window, regenerates the matching
// documentation artifacts, and runs the deep analysis pass when the
// change volume within the rolling window crosses the major-update
// threshold.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tradewind/docsync/internal/analysis"
	"github.com/tradewind/docsync/internal/config"
	"github.com/tradewind/docsync/internal/engine"
	"github.com/tradewind/docsync/internal/generate"
	"github.com/tradewind/docsync/internal/git"
	"github.com/tradewind/docsync/internal/state"
	"github.com/tradewind/docsync/internal/tracker"
)

var (
	configPath string
	rootDir    string
)

var rootCmd = &cobra.Command{
	Use:   "docsync",
	Short: "Documentation synchronization engine",
	Long: `docsync watches source directories and keeps generated documentation
artifacts synchronized with code changes.

Change events are batched behind a debounce window; each batch
regenerates the documentation artifacts whose rules match the changed
files. When the change volume within the rolling detection window
crosses the configured threshold, a full analysis pass runs and its
report is written to the report directory.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to the configuration document (default <root>/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".",
		"project root directory")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runtime is the shared wiring every command builds before doing its
// work.
type runtime struct {
	root    string
	cfg     *config.Config
	changes *tracker.Log
	store   *state.Store
	st      *state.SyncState
	orch    *analysis.Orchestrator
	eng     *engine.Engine
}

// loadRuntime resolves the project root, loads the configuration, and
// assembles the engine and its collaborators.
func loadRuntime(ctx context.Context) (*runtime, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	path := configPath
	if path == "" {
		path = filepath.Join(root, config.DefaultFileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	changes := tracker.NewLog(tracker.Filter{
		Extensions:  cfg.WatchExtensions,
		IgnoreGlobs: cfg.IgnorePatterns,
	})
	gen := generate.New(root, generate.FromConfig(cfg.AutoGenRules))
	store := state.NewStore(filepath.Join(root, cfg.StateFile))
	st := store.Load()

	timeout := cfg.CollaboratorTimeout()
	orch := analysis.NewOrchestrator(filepath.Join(root, cfg.ReportDir),
		analysis.NewCommandCollaborator("health", cfg.Analysis.HealthCommand, nil, root, timeout),
		analysis.NewCommandCollaborator("xref", cfg.Analysis.XrefCommand, nil, root, timeout),
		analysis.NewStructureCollaborator(root, cfg.WatchDirs),
	)

	var vcs *git.Git
	if cfg.GitIntegration.Enabled {
		vcs, err = git.New(ctx)
		if err != nil {
			log.Printf("Warning: git integration disabled: %v", err)
			vcs = nil
		}
	}

	return &runtime{
		root:    root,
		cfg:     cfg,
		changes: changes,
		store:   store,
		st:      st,
		orch:    orch,
		eng:     engine.New(root, cfg, changes, gen, store, st, orch, vcs),
	}, nil
}
