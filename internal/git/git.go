// Package git wraps the git CLI for the documentation sync engine's
// best-effort VCS integration. Every operation here is advisory: the
// engine logs failures as warnings and never lets them abort a sync
// cycle.
package git

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Git runs git operations through the installed git binary.
type Git struct {
	gitPath string
}

// New creates a Git instance, verifying the binary is available and
// functional.
func New(ctx context.Context) (*Git, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, gitPath, "version")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git command failed: %w", err)
	}
	return &Git{gitPath: gitPath}, nil
}

// IsRepo reports whether repoPath is inside a git work tree.
func (g *Git) IsRepo(ctx context.Context, repoPath string) bool {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "--is-inside-work-tree")
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// HasChanges reports whether the repository has staged or unstaged
// changes, parsed from porcelain status output.
func (g *Git) HasChanges(ctx context.Context, repoPath string) (bool, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "status", "--porcelain")
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status failed in %s: %w", repoPath, err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		if len(strings.TrimSpace(scanner.Text())) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Stage adds the given paths for the next commit.
func (g *Git) Stage(ctx context.Context, repoPath string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"-C", repoPath, "add", "--"}, paths...)
	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git add failed in %s: %w (%s)", repoPath, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Commit creates a commit with the given message and returns its hash.
func (g *Git) Commit(ctx context.Context, repoPath, message string) (string, error) {
	if message == "" {
		return "", fmt.Errorf("commit message is required")
	}

	cmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "commit", "-m", message)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit failed in %s: %w (%s)", repoPath, err, strings.TrimSpace(string(out)))
	}

	hashCmd := exec.CommandContext(ctx, g.gitPath, "-C", repoPath, "rev-parse", "HEAD")
	hashOutput, err := hashCmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash in %s: %w", repoPath, err)
	}
	return strings.TrimSpace(string(hashOutput)), nil
}

// Push uploads the branch to origin.
func (g *Git) Push(ctx context.Context, repoPath, branch string) error {
	args := []string{"-C", repoPath, "push", "origin"}
	if branch != "" {
		args = append(args, branch)
	}
	cmd := exec.CommandContext(ctx, g.gitPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git push failed in %s: %w (%s)", repoPath, err, strings.TrimSpace(string(out)))
	}
	return nil
}
