package git

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BuildCommitMessage renders the configured commit message template.
// Supported placeholders: {count} (number of changed paths) and
// {timestamp} (RFC 3339, UTC). The changed paths are appended as a
// bulleted body so the commit records exactly which sources drove the
// regeneration.
func BuildCommitMessage(template string, changedPaths []string, now time.Time) string {
	subject := template
	if subject == "" {
		subject = "docs: sync documentation"
	}
	subject = strings.ReplaceAll(subject, "{count}", strconv.Itoa(len(changedPaths)))
	subject = strings.ReplaceAll(subject, "{timestamp}", now.UTC().Format(time.RFC3339))

	if len(changedPaths) == 0 {
		return subject
	}

	var sb strings.Builder
	sb.WriteString(subject)
	sb.WriteString("\n\nChanged paths:\n")
	for _, p := range changedPaths {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	return strings.TrimRight(sb.String(), "\n")
}
