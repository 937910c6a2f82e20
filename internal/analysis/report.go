package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Kind distinguishes routine post-sync analysis from the heavier
// major-update analysis.
type Kind string

const (
	KindRoutine Kind = "routine"
	KindMajor   Kind = "major"
)

// Report is the assembled outcome of one analysis run.
type Report struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Kind        Kind      `json:"kind"`
	Results     []Result  `json:"results"`
	ChangePaths []string  `json:"change_paths,omitempty"`
}

// Compile renders a report as a markdown document. It is pure: all
// I/O happens in the orchestrator.
func Compile(r Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Analysis Report %s\n\n", r.ID)
	fmt.Fprintf(&sb, "- Timestamp: %s\n", r.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "- Kind: %s\n", r.Kind)
	fmt.Fprintf(&sb, "- Collaborators: %d\n", len(r.Results))

	for _, res := range r.Results {
		fmt.Fprintf(&sb, "\n## %s\n\n", res.Category)
		fmt.Fprintf(&sb, "Status: %s (%s)\n", res.Status, res.Duration.Round(time.Millisecond))
		if res.Message != "" {
			fmt.Fprintf(&sb, "\n%s\n", res.Message)
		}
		if res.Output != "" {
			fmt.Fprintf(&sb, "\n```\n%s\n```\n", res.Output)
		}
	}

	if len(r.ChangePaths) > 0 {
		paths := append([]string(nil), r.ChangePaths...)
		sort.Strings(paths)
		sb.WriteString("\n## Changed paths\n\n")
		for _, p := range paths {
			fmt.Fprintf(&sb, "- `%s`\n", p)
		}
	}

	return sb.String()
}
