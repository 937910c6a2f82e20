package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state and recent analysis history",
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadRuntime(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		st := rt.st
		fmt.Printf("\n%s\n\n", cyan("=== docsync status ==="))

		fmt.Printf("%s\n", yellow("Sync:"))
		fmt.Printf("  Last sync:         %s\n", formatTime(st.LastSync))
		fmt.Printf("  Last major update: %s\n", formatTime(st.LastMajorUpdate))
		fmt.Printf("  Last health check: %s\n", formatTime(st.Statistics.LastHealthCheck))
		fmt.Printf("  Total syncs:       %d\n", st.Statistics.TotalSyncs)
		fmt.Printf("  Total changes:     %d\n", st.Statistics.TotalChanges)
		fmt.Printf("  Tracked files:     %d\n", len(st.FileFingerprints))
		fmt.Println()

		fmt.Printf("%s\n", yellow("Recent analysis:"))
		if len(st.AnalysisHistory) == 0 {
			fmt.Printf("  %s\n", gray("no analysis runs recorded"))
		} else {
			history := st.AnalysisHistory
			if len(history) > 5 {
				history = history[len(history)-5:]
			}
			for i := len(history) - 1; i >= 0; i-- {
				h := history[i]
				fmt.Printf("  %s  %-7s  %d change(s)\n",
					h.Timestamp.Format("2006-01-02 15:04:05"), h.Kind, h.ChangeCount)
				if h.Document != "" {
					fmt.Printf("    %s\n", gray(h.Document))
				}
			}
		}
		fmt.Println()
	},
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return fmt.Sprintf("%s (%s ago)",
		t.Format("2006-01-02 15:04:05"),
		time.Since(t).Round(time.Second))
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
