package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var majorCmd = &cobra.Command{
	Use:     "major",
	Aliases: []string{"full"},
	Short:   "Force a full documentation update with analysis",
	Long: `Run a full update regardless of change volume: sync any pending
changes, then run every analysis collaborator and write the report.
Equivalent to what watch mode does when the major-update threshold is
crossed.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		rt, err := loadRuntime(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()

		if n := rt.eng.DetectOfflineChanges(); n > 0 {
			res := rt.eng.RunCycle(ctx)
			fmt.Printf("Synced %d change(s)\n", res.Processed)
		}

		doc, err := rt.eng.RunMajorAnalysis(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: analysis failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n", green("Full update complete"))
		fmt.Printf("  report: %s\n", doc)
	},
}

func init() {
	rootCmd.AddCommand(majorCmd)
}
