// Package analysis runs external analysis collaborators over the
// watched tree and compiles their results into report documents.
//
// A collaborator is a black box with a result contract: it runs in
// bounded time and yields success with output, a structured error, or
// not_found when the tool is not installed. No collaborator outcome is
// fatal to an analysis run.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Status is the outcome class of one collaborator invocation.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
	StatusNotFound Status = "not_found"
)

// Result is one collaborator's contribution to a report.
type Result struct {
	Category string        `json:"category"`
	Status   Status        `json:"status"`
	Output   string        `json:"output,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Collaborator is an external analysis tool invoked by the
// orchestrator.
type Collaborator interface {
	// Category is the stable report-section identifier.
	Category() string

	// Run executes the analysis. The context carries the invocation
	// deadline; implementations must return an error Result rather
	// than blocking past it.
	Run(ctx context.Context) Result
}

// maxOutputBytes caps captured subprocess output in a result.
const maxOutputBytes = 64 * 1024

// CommandCollaborator runs an external tool as a subprocess.
type CommandCollaborator struct {
	category string
	command  string
	args     []string
	dir      string
	timeout  time.Duration
}

// NewCommandCollaborator wraps the named tool. A tool missing from
// PATH produces a not_found result at run time, not an error here:
// availability is checked per invocation so installing the tool takes
// effect without a restart.
func NewCommandCollaborator(category, command string, args []string, dir string, timeout time.Duration) *CommandCollaborator {
	return &CommandCollaborator{
		category: category,
		command:  command,
		args:     args,
		dir:      dir,
		timeout:  timeout,
	}
}

func (c *CommandCollaborator) Category() string { return c.category }

// Run invokes the tool with the configured timeout.
func (c *CommandCollaborator) Run(ctx context.Context) Result {
	start := time.Now()

	path, err := exec.LookPath(c.command)
	if err != nil {
		return Result{
			Category: c.category,
			Status:   StatusNotFound,
			Message:  fmt.Sprintf("%s not installed", c.command),
			Duration: time.Since(start),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, c.args...)
	cmd.Dir = c.dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err = cmd.Run()
	elapsed := time.Since(start)
	output := truncate(buf.String())

	if runCtx.Err() == context.DeadlineExceeded {
		return Result{
			Category: c.category,
			Status:   StatusError,
			Message:  fmt.Sprintf("%s timed out after %s", c.command, c.timeout),
			Output:   output,
			Duration: elapsed,
		}
	}
	if err != nil {
		return Result{
			Category: c.category,
			Status:   StatusError,
			Message:  fmt.Sprintf("%s failed: %v", c.command, err),
			Output:   output,
			Duration: elapsed,
		}
	}
	return Result{
		Category: c.category,
		Status:   StatusSuccess,
		Output:   output,
		Duration: elapsed,
	}
}

func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:maxOutputBytes]) + "\n[output truncated]"
}

// StructureCollaborator computes structural counts of the watched
// tree in-process: files, lines, and directories broken down by
// extension.
type StructureCollaborator struct {
	root     string
	dirs     []string
	skipDirs map[string]bool
}

// NewStructureCollaborator counts under root, restricted to dirs
// (relative to root). Empty dirs means the whole root.
func NewStructureCollaborator(root string, dirs []string) *StructureCollaborator {
	return &StructureCollaborator{
		root: root,
		dirs: dirs,
		skipDirs: map[string]bool{
			".git":         true,
			"node_modules": true,
			"dist":         true,
			"build":        true,
			"__pycache__":  true,
		},
	}
}

func (s *StructureCollaborator) Category() string { return "structure" }

// Run walks the tree and renders the counts. A missing directory is
// skipped; only a totally unwalkable tree yields an error result.
func (s *StructureCollaborator) Run(ctx context.Context) Result {
	start := time.Now()

	roots := s.dirs
	if len(roots) == 0 {
		roots = []string{"."}
	}

	fileCount := 0
	dirCount := 0
	lineCount := 0
	byExt := make(map[string]int)
	walked := false

	for _, dir := range roots {
		base := filepath.Join(s.root, dir)
		err := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() {
				if s.skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				dirCount++
				return nil
			}
			fileCount++
			ext := strings.ToLower(filepath.Ext(path))
			if ext == "" {
				ext = "(none)"
			}
			byExt[ext]++
			if data, readErr := os.ReadFile(path); readErr == nil {
				lineCount += bytes.Count(data, []byte("\n"))
			}
			return nil
		})
		if err == nil {
			walked = true
		}
	}

	if !walked {
		return Result{
			Category: s.Category(),
			Status:   StatusError,
			Message:  "no watched directory could be scanned",
			Duration: time.Since(start),
		}
	}

	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	var sb strings.Builder
	fmt.Fprintf(&sb, "files: %d\ndirectories: %d\nlines: %d\n", fileCount, dirCount, lineCount)
	for _, ext := range exts {
		fmt.Fprintf(&sb, "%s: %d\n", ext, byExt[ext])
	}

	return Result{
		Category: s.Category(),
		Status:   StatusSuccess,
		Output:   strings.TrimSpace(sb.String()),
		Duration: time.Since(start),
	}
}
