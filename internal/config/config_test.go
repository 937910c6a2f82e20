package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsync.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// The default document must now exist on disk.
	_, err = os.Stat(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.DebounceMs)
	assert.Equal(t, 15, cfg.Analysis.MajorUpdateDetection.FileThreshold)
	assert.Contains(t, cfg.AutoGenRules, "api")
	assert.Contains(t, cfg.AutoGenRules, "components")
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsync.yaml")

	cfg := Default()
	cfg.DebounceMs = 5000
	cfg.RetentionDays = 7
	cfg.GitIntegration.Enabled = true
	cfg.GitIntegration.Branch = "docs"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, loaded.DebounceMs)
	assert.Equal(t, 7, loaded.RetentionDays)
	assert.True(t, loaded.GitIntegration.Enabled)
	assert.Equal(t, "docs", loaded.GitIntegration.Branch)
}

func TestLoadMalformedFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watchDirs: [unclosed"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().DebounceMs, cfg.DebounceMs)
}

func TestLoadPartialConfigBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("watchDirs:\n  - lib\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib"}, cfg.WatchDirs)
	assert.Equal(t, Default().DebounceMs, cfg.DebounceMs)
	assert.Equal(t, Default().StateFile, cfg.StateFile)
	assert.NotZero(t, cfg.Analysis.MajorUpdateDetection.FileThreshold)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	cfg := Default()
	cfg.DebounceMs = 10
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RetentionDays = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.AutoGenRules["api"] = RuleConfig{Enabled: true, Patterns: []string{"**/*.ts"}}
	assert.Error(t, cfg.Validate()) // missing output path

	cfg = Default()
	cfg.AutoGenRules[""] = RuleConfig{Enabled: true, Patterns: []string{"**/*.ts"}, OutputPath: "docs/X.md"}
	assert.Error(t, cfg.Validate()) // empty rule id
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3*time.Second, cfg.Debounce())
	assert.Equal(t, time.Hour, cfg.MajorUpdateWindow())
	assert.Equal(t, 30*24*time.Hour, cfg.Retention())
}
