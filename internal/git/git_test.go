package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// initTestRepo creates a throwaway git repository with user config set.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v (%s)", args, err, out)
		}
	}
	run("init")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")
	return dir
}

func TestGitStageAndCommit(t *testing.T) {
	ctx := context.Background()
	repo := initTestRepo(t)

	g, err := New(ctx)
	if err != nil {
		t.Skipf("git unavailable: %v", err)
	}

	if !g.IsRepo(ctx, repo) {
		t.Fatal("expected test directory to be a git repo")
	}

	hasChanges, err := g.HasChanges(ctx, repo)
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if hasChanges {
		t.Error("expected no changes in empty repo")
	}

	docPath := filepath.Join(repo, "docs", "API.md")
	if err := os.MkdirAll(filepath.Dir(docPath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(docPath, []byte("# API Documentation\n"), 0644); err != nil {
		t.Fatal(err)
	}

	hasChanges, err = g.HasChanges(ctx, repo)
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if !hasChanges {
		t.Error("expected changes after writing artifact")
	}

	if err := g.Stage(ctx, repo, []string{"docs"}); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	hash, err := g.Commit(ctx, repo, "docs: sync documentation (1 changes)")
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if len(hash) != 40 {
		t.Errorf("expected full commit hash, got %q", hash)
	}

	hasChanges, err = g.HasChanges(ctx, repo)
	if err != nil {
		t.Fatalf("HasChanges failed: %v", err)
	}
	if hasChanges {
		t.Error("expected clean tree after commit")
	}
}

func TestCommitRequiresMessage(t *testing.T) {
	ctx := context.Background()
	g, err := New(ctx)
	if err != nil {
		t.Skipf("git unavailable: %v", err)
	}
	if _, err := g.Commit(ctx, t.TempDir(), ""); err == nil {
		t.Error("expected error for empty commit message")
	}
}

func TestIsRepoFalseOutsideRepo(t *testing.T) {
	ctx := context.Background()
	g, err := New(ctx)
	if err != nil {
		t.Skipf("git unavailable: %v", err)
	}
	if g.IsRepo(ctx, t.TempDir()) {
		t.Error("expected plain temp dir not to be a repo")
	}
}

func TestBuildCommitMessage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := BuildCommitMessage("docs: sync documentation ({count} changes)",
		[]string{"src/a.ts", "backend/api/orders.py"}, now)

	if !strings.HasPrefix(msg, "docs: sync documentation (2 changes)") {
		t.Errorf("unexpected subject: %q", msg)
	}
	if !strings.Contains(msg, "- src/a.ts") || !strings.Contains(msg, "- backend/api/orders.py") {
		t.Errorf("changed paths missing from body: %q", msg)
	}
}

func TestBuildCommitMessageNoPaths(t *testing.T) {
	msg := BuildCommitMessage("docs: sync at {timestamp}", nil, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if msg != "docs: sync at 2025-06-01T12:00:00Z" {
		t.Errorf("unexpected message: %q", msg)
	}
	if strings.Contains(msg, "Changed paths") {
		t.Error("empty path list must not produce a body")
	}
}
