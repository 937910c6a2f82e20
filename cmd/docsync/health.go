package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tradewind/docsync/internal/analysis"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run the documentation health check",
	Long: `Invoke the configured health tool once and print its output. The check
time is recorded in the sync state.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		rt, err := loadRuntime(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		res, err := rt.eng.RunHealthCheck(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Health check: %s (%s)\n", statusLabel(res.Status), res.Duration.Round(time.Millisecond))
		if res.Message != "" {
			fmt.Println(res.Message)
		}
		if res.Output != "" {
			fmt.Println(res.Output)
		}
		if res.Status == analysis.StatusError {
			os.Exit(1)
		}
	},
}

// statusLabel renders a collaborator status with the usual colors.
func statusLabel(s analysis.Status) string {
	switch s {
	case analysis.StatusSuccess:
		return color.New(color.FgGreen).Sprint("success")
	case analysis.StatusNotFound:
		return color.New(color.FgYellow).Sprint("not found")
	default:
		return color.New(color.FgRed).Sprint("error")
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
