package generate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradewind/docsync/internal/tracker"
)

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func record(path string, kind tracker.Kind) tracker.ChangeRecord {
	return tracker.ChangeRecord{Path: path, Kind: kind, Timestamp: time.Now()}
}

func TestGeneratorSeedsAndAppendsArtifact(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "backend/api/v1/orders.py",
		"@router.get(\"/orders\")\ndef list_orders():\n    return []\n")

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "api",
		Enabled:    true,
		Patterns:   []string{"**/api/**/*.py"},
		OutputPath: "docs/API.md",
		Extract:    extractAPIRoutes,
	}))

	gen := New(root, reg)
	results := gen.Run([]tracker.ChangeRecord{record("backend/api/v1/orders.py", tracker.KindModified)})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Matched)

	data, err := os.ReadFile(filepath.Join(root, "docs/API.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# API Documentation")
	assert.Contains(t, content, "## Sync update")
	assert.Contains(t, content, "`GET /api/v1/orders`")
	assert.Contains(t, content, "handler `list_orders`")
	assert.Contains(t, content, "backend/api/v1/orders.py")

	// A second run appends another section to the existing artifact.
	gen.Run([]tracker.ChangeRecord{record("backend/api/v1/orders.py", tracker.KindModified)})
	data, err = os.ReadFile(filepath.Join(root, "docs/API.md"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "## Sync update"))
	assert.Equal(t, 1, strings.Count(string(data), "# API Documentation"))
}

func TestGeneratorSeedsFromTemplate(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "templates/api.md", "# Trading API Reference\n")
	writeSource(t, root, "api/orders.ts", "router.get('/orders', listOrders);\n")

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "api",
		Enabled:    true,
		Patterns:   []string{"api/**/*.ts"},
		OutputPath: "docs/API.md",
		Template:   "templates/api.md",
		Extract:    extractAPIRoutes,
	}))

	gen := New(root, reg)
	results := gen.Run([]tracker.ChangeRecord{record("api/orders.ts", tracker.KindModified)})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	data, err := os.ReadFile(filepath.Join(root, "docs/API.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Trading API Reference")
}

func TestGeneratorRuleFailureIsolated(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "api/orders.ts", "router.get('/orders', listOrders);\n")
	writeSource(t, root, "src/components/Button.tsx", "export default function Button() {}\n")

	boom := errors.New("malformed extraction")
	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "components",
		Enabled:    true,
		Patterns:   []string{"**/components/**/*.tsx"},
		OutputPath: "docs/COMPONENTS.md",
		Extract: func(rec tracker.ChangeRecord, content []byte) ([]string, error) {
			return nil, boom
		},
	}))
	require.NoError(t, reg.Register(Rule{
		ID:         "api",
		Enabled:    true,
		Patterns:   []string{"api/**/*.ts"},
		OutputPath: "docs/API.md",
		Extract:    extractAPIRoutes,
	}))

	gen := New(root, reg)
	results := gen.Run([]tracker.ChangeRecord{
		record("src/components/Button.tsx", tracker.KindModified),
		record("api/orders.ts", tracker.KindModified),
	})
	require.Len(t, results, 2)

	byID := map[string]RuleResult{}
	for _, r := range results {
		byID[r.RuleID] = r
	}
	assert.ErrorIs(t, byID["components"].Err, boom)
	require.NoError(t, byID["api"].Err)

	// The failing rule must not block the healthy one.
	_, err := os.Stat(filepath.Join(root, "docs/API.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "docs/COMPONENTS.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestGeneratorSkipsDisabledRules(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "api/orders.ts", "router.get('/orders', f);\n")

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "api",
		Enabled:    false,
		Patterns:   []string{"api/**/*.ts"},
		OutputPath: "docs/API.md",
		Extract:    extractAPIRoutes,
	}))

	results := New(root, reg).Run([]tracker.ChangeRecord{record("api/orders.ts", tracker.KindModified)})
	assert.Empty(t, results)
	_, err := os.Stat(filepath.Join(root, "docs/API.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestGeneratorDeletedFileNoted(t *testing.T) {
	root := t.TempDir()

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "api",
		Enabled:    true,
		Patterns:   []string{"api/**/*.ts"},
		OutputPath: "docs/API.md",
		Extract:    extractAPIRoutes,
	}))

	results := New(root, reg).Run([]tracker.ChangeRecord{record("api/orders.ts", tracker.KindDeleted)})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	data, err := os.ReadFile(filepath.Join(root, "docs/API.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "removed `api/orders.ts`")
}

func TestGeneratorSkipsWriteWhenNothingExtracted(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/components/helpers.tsx", "const internalOnly = 1\n")

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "components",
		Enabled:    true,
		Patterns:   []string{"**/components/**/*.tsx"},
		OutputPath: "docs/COMPONENTS.md",
		Extract:    extractComponents,
	}))

	gen := New(root, reg)
	results := gen.Run([]tracker.ChangeRecord{record("src/components/helpers.tsx", tracker.KindModified)})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	// No exports means no fragments; the artifact must not be created
	// just to hold an empty section.
	_, err := os.Stat(filepath.Join(root, "docs/COMPONENTS.md"))
	assert.True(t, os.IsNotExist(err))

	// An existing artifact is likewise left untouched.
	writeSource(t, root, "docs/COMPONENTS.md", "# Components Documentation\n")
	gen.Run([]tracker.ChangeRecord{record("src/components/helpers.tsx", tracker.KindModified)})
	data, err := os.ReadFile(filepath.Join(root, "docs/COMPONENTS.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "## Sync update")
}

func TestGeneratorSeedsWithoutRuleID(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/notes.ts", "export const note = 1\n")

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "",
		Enabled:    true,
		Patterns:   []string{"src/**/*.ts"},
		OutputPath: "docs/NOTES.md",
	}))

	results := New(root, reg).Run([]tracker.ChangeRecord{record("src/notes.ts", tracker.KindModified)})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	data, err := os.ReadFile(filepath.Join(root, "docs/NOTES.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Project Documentation")
}

func TestGeneratorUsesLatestRecordPerPath(t *testing.T) {
	root := t.TempDir()

	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{
		ID:         "api",
		Enabled:    true,
		Patterns:   []string{"api/**/*.ts"},
		OutputPath: "docs/API.md",
		Extract:    extractAPIRoutes,
	}))

	// Added then deleted within one batch: only the deletion matters.
	results := New(root, reg).Run([]tracker.ChangeRecord{
		record("api/orders.ts", tracker.KindAdded),
		record("api/orders.ts", tracker.KindDeleted),
	})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Matched)
}
