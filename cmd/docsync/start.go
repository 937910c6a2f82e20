package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tradewind/docsync/internal/analysis"
	"github.com/tradewind/docsync/internal/tracker"
)

// sweepInterval is how often watch mode prunes old analysis reports.
const sweepInterval = 24 * time.Hour

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Watch source directories and sync documentation continuously",
	Long: `Start watch mode. File changes under the configured directories are
batched behind the debounce window; each quiet period triggers a sync
cycle. Periodic tasks run alongside: a full-tree rescan catches changes
the watcher missed, the health check runs on its own interval, and old
analysis reports are pruned per the retention policy.

Stop with Ctrl-C.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := loadRuntime(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== docsync watch mode ==="))
		fmt.Printf("  Root:     %s\n", rt.root)
		fmt.Printf("  Watching: %v\n", rt.cfg.WatchDirs)
		fmt.Printf("  Debounce: %s\n", rt.cfg.Debounce())
		fmt.Println()

		// Catch edits made while the process was down.
		if n := rt.eng.DetectOfflineChanges(); n > 0 {
			fmt.Printf("  %s\n", green(fmt.Sprintf("%d offline change(s) detected", n)))
			rt.eng.Notify()
		} else {
			fmt.Printf("  %s\n", gray("tree matches stored fingerprints"))
		}

		watcher, err := tracker.NewWatcher(rt.changes, rt.eng.Notify)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create watcher: %v\n", err)
			os.Exit(1)
		}
		dirs := make([]string, 0, len(rt.cfg.WatchDirs))
		for _, d := range rt.cfg.WatchDirs {
			dirs = append(dirs, filepath.Join(rt.root, d))
		}
		watcher.Watch(dirs)
		watcher.Start(ctx)
		defer watcher.Stop()

		sweeper := analysis.NewSweeper(filepath.Join(rt.root, rt.cfg.ReportDir), rt.cfg.Retention())
		if removed, err := sweeper.Sweep(time.Now()); err == nil && removed > 0 {
			fmt.Printf("  %s\n", gray(fmt.Sprintf("pruned %d old report(s)", removed)))
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return rt.eng.Run(ctx)
		})

		g.Go(func() error {
			ticker := time.NewTicker(rt.cfg.SyncInterval())
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if n := rt.eng.DetectOfflineChanges(); n > 0 {
						rt.eng.Notify()
					}
				}
			}
		})

		g.Go(func() error {
			ticker := time.NewTicker(rt.cfg.HealthCheckInterval())
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if _, err := rt.eng.RunHealthCheck(ctx); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: health check failed: %v\n", err)
					}
				}
			}
		})

		g.Go(func() error {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if _, err := sweeper.Sweep(time.Now()); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: report sweep failed: %v\n", err)
					}
				}
			}
		})

		fmt.Printf("  %s\n\n", green("watching for changes"))

		if err := g.Wait(); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s\n", gray("docsync stopped"))
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
