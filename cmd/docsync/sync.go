package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tradewind/docsync/internal/analysis"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync cycle and exit",
	Long: `Scan the watched directories for changes since the last sync (using the
stored content fingerprints), regenerate the matching documentation
artifacts, and exit. Useful from scripts and CI where watch mode is not
wanted.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		rt, err := loadRuntime(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		n := rt.eng.DetectOfflineChanges()
		if n == 0 {
			fmt.Printf("%s\n", gray("Documentation already in sync"))
			return
		}

		res := rt.eng.RunCycle(ctx)
		fmt.Printf("%s\n", green(fmt.Sprintf("Synced %d change(s)", res.Processed)))
		for _, r := range res.Rules {
			if r.Err != nil {
				fmt.Printf("  %s: failed (%v)\n", r.RuleID, r.Err)
				continue
			}
			fmt.Printf("  %s: %s (%d file(s))\n", r.RuleID, r.Artifact, r.Matched)
		}
		if res.Kind == analysis.KindMajor && res.ReportPath != "" {
			fmt.Printf("  major update, analysis report: %s\n", res.ReportPath)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
