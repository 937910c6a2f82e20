// Package config loads and persists the docsync configuration document.
//
// The configuration is a single YAML file. A missing file is not an
// error: the built-in defaults are written to disk and used. A
// malformed file is also not fatal; the loader logs a warning and
// falls back to defaults, so a bad edit never takes the sync engine
// down.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config document name looked up under the
// project root when no explicit --config path is given.
const DefaultFileName = "docsync.yaml"

// Config is the top-level configuration document.
type Config struct {
	// WatchDirs are the directories (relative to the project root)
	// monitored for file changes.
	WatchDirs []string `yaml:"watchDirs"`

	// WatchExtensions is the allow-list of file extensions that
	// produce change records (e.g. ".ts", ".py").
	WatchExtensions []string `yaml:"watchExtensions"`

	// IgnorePatterns are glob patterns (doublestar syntax) for paths
	// that never produce change records.
	IgnorePatterns []string `yaml:"ignorePatterns"`

	// AutoGenRules maps a rule id to its generation rule. Known ids
	// ("api", "components", "modules", "architecture") get the
	// built-in extractor for that category.
	AutoGenRules map[string]RuleConfig `yaml:"autoGenRules"`

	GitIntegration GitConfig      `yaml:"gitIntegration"`
	Analysis       AnalysisConfig `yaml:"analysis"`

	// SyncIntervalMs is how often watch mode re-scans the tree for
	// changes that slipped past the watcher (e.g. edits made while
	// the process was down).
	SyncIntervalMs int `yaml:"syncIntervalMs"`

	// DebounceMs is the quiescence window: a batch cycle fires only
	// after this long with no new change events.
	DebounceMs int `yaml:"debounceMs"`

	// StateFile is the path of the persisted sync state document,
	// relative to the project root.
	StateFile string `yaml:"stateFile"`

	// ReportDir is where analysis report documents are written,
	// relative to the project root.
	ReportDir string `yaml:"reportDir"`

	// RetentionDays is how long report documents are kept before the
	// retention sweeper deletes them.
	RetentionDays int `yaml:"retentionDays"`
}

// RuleConfig configures one auto-generation rule.
type RuleConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Patterns   []string `yaml:"patterns"`
	OutputPath string   `yaml:"outputPath"`
	Template   string   `yaml:"template,omitempty"`
}

// GitConfig controls the best-effort VCS integration.
type GitConfig struct {
	Enabled       bool   `yaml:"enabled"`
	AutoCommit    bool   `yaml:"autoCommit"`
	CommitMessage string `yaml:"commitMessage"`
	AutoPush      bool   `yaml:"autoPush"`
	Branch        string `yaml:"branch"`
}

// AnalysisConfig controls the analysis orchestrator and the
// major-update classifier.
type AnalysisConfig struct {
	// RunAfterChanges enables the deep analysis pass after a batch
	// classified as a major update.
	RunAfterChanges bool `yaml:"runAfterChanges"`

	// DetailedAnalysisThreshold is the minimum batch size for the
	// detailed per-file section of the report.
	DetailedAnalysisThreshold int `yaml:"detailedAnalysisThreshold"`

	// HealthCheckIntervalMs is the period of the standalone health
	// check in watch mode.
	HealthCheckIntervalMs int `yaml:"healthCheckIntervalMs"`

	// CollaboratorTimeoutMs bounds each external collaborator
	// invocation.
	CollaboratorTimeoutMs int `yaml:"collaboratorTimeoutMs"`

	// HealthCommand and XrefCommand name the external analysis tools.
	// A tool missing from PATH degrades to a not_found report entry.
	HealthCommand string `yaml:"healthCommand"`
	XrefCommand   string `yaml:"xrefCommand"`

	MajorUpdateDetection MajorUpdateConfig `yaml:"majorUpdateDetection"`
}

// MajorUpdateConfig is the rolling-window threshold for classifying a
// batch as a major update.
type MajorUpdateConfig struct {
	// FileThreshold is the number of changes within TimeWindowMs at
	// which a batch counts as major. The boundary is inclusive.
	FileThreshold int `yaml:"fileThreshold"`

	TimeWindowMs int64 `yaml:"timeWindowMs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		WatchDirs:       []string{"src", "backend"},
		WatchExtensions: []string{".ts", ".tsx", ".js", ".jsx", ".py"},
		IgnorePatterns: []string{
			"**/node_modules/**",
			"**/.git/**",
			"**/dist/**",
			"**/build/**",
			"**/__pycache__/**",
		},
		AutoGenRules: map[string]RuleConfig{
			"api": {
				Enabled: true,
				Patterns: []string{
					"**/api/**/*.ts",
					"**/api/**/*.py",
					"**/routes/**/*.ts",
					"**/routes/**/*.py",
				},
				OutputPath: "docs/API.md",
			},
			"components": {
				Enabled: true,
				Patterns: []string{
					"**/components/**/*.tsx",
					"**/components/**/*.jsx",
				},
				OutputPath: "docs/COMPONENTS.md",
			},
			"modules": {
				Enabled: true,
				Patterns: []string{
					"src/**/*.ts",
					"src/**/*.tsx",
					"backend/**/*.py",
				},
				OutputPath: "docs/MODULES.md",
			},
			"architecture": {
				Enabled: true,
				Patterns: []string{
					"**/*.ts",
					"**/*.tsx",
					"**/*.py",
				},
				OutputPath: "docs/ARCHITECTURE.md",
			},
		},
		GitIntegration: GitConfig{
			Enabled:       false,
			AutoCommit:    false,
			CommitMessage: "docs: sync documentation ({count} changes)",
			AutoPush:      false,
			Branch:        "main",
		},
		Analysis: AnalysisConfig{
			RunAfterChanges:           true,
			DetailedAnalysisThreshold: 10,
			HealthCheckIntervalMs:     1_800_000, // 30m
			CollaboratorTimeoutMs:     60_000,
			HealthCommand:             "doc-health-scan",
			XrefCommand:               "doc-xref-scan",
			MajorUpdateDetection: MajorUpdateConfig{
				FileThreshold: 15,
				TimeWindowMs:  3_600_000, // 1h
			},
		},
		SyncIntervalMs: 300_000, // 5m
		DebounceMs:     3_000,
		StateFile:      ".docsync/state.json",
		ReportDir:      "docs/analysis",
		RetentionDays:  30,
	}
}

// Load reads the configuration document at path. A missing file is
// created from defaults; an unreadable or malformed file falls back to
// defaults with a warning. Load never fails on config content, only
// on an inability to write the default document for a missing path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if saveErr := Save(path, cfg); saveErr != nil {
			return nil, fmt.Errorf("writing default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		log.Printf("Warning: failed to read config %s: %v (using defaults)", path, err)
		return Default(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Printf("Warning: failed to parse config %s: %v (using defaults)", path, err)
		return Default(), nil
	}

	cfg.fillZeroValues()
	if err := cfg.Validate(); err != nil {
		log.Printf("Warning: invalid config %s: %v (using defaults)", path, err)
		return Default(), nil
	}
	return &cfg, nil
}

// Save writes the configuration document to path, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fillZeroValues backfills fields a hand-edited document commonly
// omits, so partial configs still behave.
func (c *Config) fillZeroValues() {
	def := Default()
	if c.DebounceMs == 0 {
		c.DebounceMs = def.DebounceMs
	}
	if c.SyncIntervalMs == 0 {
		c.SyncIntervalMs = def.SyncIntervalMs
	}
	if c.StateFile == "" {
		c.StateFile = def.StateFile
	}
	if c.ReportDir == "" {
		c.ReportDir = def.ReportDir
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = def.RetentionDays
	}
	if c.Analysis.CollaboratorTimeoutMs == 0 {
		c.Analysis.CollaboratorTimeoutMs = def.Analysis.CollaboratorTimeoutMs
	}
	if c.Analysis.HealthCheckIntervalMs == 0 {
		c.Analysis.HealthCheckIntervalMs = def.Analysis.HealthCheckIntervalMs
	}
	if c.Analysis.HealthCommand == "" {
		c.Analysis.HealthCommand = def.Analysis.HealthCommand
	}
	if c.Analysis.XrefCommand == "" {
		c.Analysis.XrefCommand = def.Analysis.XrefCommand
	}
	if c.Analysis.MajorUpdateDetection.FileThreshold == 0 {
		c.Analysis.MajorUpdateDetection = def.Analysis.MajorUpdateDetection
	}
	if len(c.WatchExtensions) == 0 {
		c.WatchExtensions = def.WatchExtensions
	}
}

// Validate checks that configured values are within sane ranges.
func (c *Config) Validate() error {
	if c.DebounceMs < 100 || c.DebounceMs > 600_000 {
		return fmt.Errorf("debounceMs must be between 100 and 600000 (got %d)", c.DebounceMs)
	}
	if c.RetentionDays < 1 || c.RetentionDays > 365 {
		return fmt.Errorf("retentionDays must be between 1 and 365 (got %d)", c.RetentionDays)
	}
	if c.Analysis.MajorUpdateDetection.FileThreshold < 1 {
		return fmt.Errorf("majorUpdateDetection.fileThreshold must be at least 1 (got %d)",
			c.Analysis.MajorUpdateDetection.FileThreshold)
	}
	if c.Analysis.MajorUpdateDetection.TimeWindowMs < 1000 {
		return fmt.Errorf("majorUpdateDetection.timeWindowMs must be at least 1000 (got %d)",
			c.Analysis.MajorUpdateDetection.TimeWindowMs)
	}
	for id, rule := range c.AutoGenRules {
		if id == "" {
			return fmt.Errorf("autoGenRules: rule id must not be empty")
		}
		if rule.OutputPath == "" {
			return fmt.Errorf("autoGenRules.%s: outputPath is required", id)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("autoGenRules.%s: at least one pattern is required", id)
		}
	}
	return nil
}

// Debounce returns the quiescence window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// SyncInterval returns the periodic re-scan interval.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMs) * time.Millisecond
}

// HealthCheckInterval returns the standalone health check period.
func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.Analysis.HealthCheckIntervalMs) * time.Millisecond
}

// CollaboratorTimeout returns the per-collaborator invocation bound.
func (c *Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.Analysis.CollaboratorTimeoutMs) * time.Millisecond
}

// MajorUpdateWindow returns the rolling classification window.
func (c *Config) MajorUpdateWindow() time.Duration {
	return time.Duration(c.Analysis.MajorUpdateDetection.TimeWindowMs) * time.Millisecond
}

// Retention returns the report retention period.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
