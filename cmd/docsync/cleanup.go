package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradewind/docsync/internal/analysis"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete analysis reports older than the retention period",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadRuntime(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		sweeper := analysis.NewSweeper(filepath.Join(rt.root, rt.cfg.ReportDir), rt.cfg.Retention())
		removed, err := sweeper.Sweep(time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: sweep failed: %v\n", err)
			os.Exit(1)
		}
		if removed == 0 {
			fmt.Println("No reports past retention")
			return
		}
		fmt.Printf("Removed %d report(s) older than %d day(s)\n", removed, rt.cfg.RetentionDays)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
