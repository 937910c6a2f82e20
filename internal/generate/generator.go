package generate

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tradewind/docsync/internal/tracker"
)

// Generator applies the rule table to a batch of change records and
// rewrites the matching documentation artifacts in place.
type Generator struct {
	root string
	reg  *Registry
	now  func() time.Time
}

// RuleResult reports the outcome of one rule for one batch.
type RuleResult struct {
	RuleID   string
	Artifact string // root-relative output path, empty if rule skipped
	Matched  int    // changed files the rule matched
	Err      error
}

// New creates a generator rooted at the project directory. Rule output
// paths and change record paths are resolved against root.
func New(root string, reg *Registry) *Generator {
	return &Generator{root: root, reg: reg, now: time.Now}
}

// Run regenerates every enabled rule's artifact whose patterns match
// the batch. A failure in one rule is captured in its result and
// logged; the remaining rules still run. Returns one result per
// enabled rule that matched at least one record or failed.
func (g *Generator) Run(batch []tracker.ChangeRecord) []RuleResult {
	reduced := tracker.LatestPerPath(batch)
	var results []RuleResult

	for _, rule := range g.reg.Rules() {
		if !rule.Enabled {
			continue
		}

		var matched []tracker.ChangeRecord
		for _, rec := range reduced {
			if rule.Matches(g.relPath(rec.Path)) {
				matched = append(matched, rec)
			}
		}
		if len(matched) == 0 {
			continue
		}

		res := RuleResult{RuleID: rule.ID, Artifact: rule.OutputPath, Matched: len(matched)}
		if err := g.generate(rule, matched); err != nil {
			res.Err = err
			log.Printf("Warning: rule %s failed: %v", rule.ID, err)
		}
		results = append(results, res)
	}
	return results
}

// generate rebuilds one rule's artifact from its matched records.
func (g *Generator) generate(rule Rule, matched []tracker.ChangeRecord) error {
	content, err := g.loadOrSeed(rule)
	if err != nil {
		return err
	}

	var section strings.Builder
	fmt.Fprintf(&section, "\n## Sync update %s\n", g.now().UTC().Format(time.RFC3339))
	entries := 0

	for _, rec := range matched {
		rel := g.relPath(rec.Path)
		if rec.Kind == tracker.KindDeleted {
			fmt.Fprintf(&section, "\n- removed `%s`\n", rel)
			entries++
			continue
		}

		data, err := os.ReadFile(g.absPath(rec.Path))
		if err != nil {
			return fmt.Errorf("reading source %s: %w", rel, err)
		}
		lines, err := rule.Extract(tracker.ChangeRecord{
			Path:      rel,
			Kind:      rec.Kind,
			Timestamp: rec.Timestamp,
		}, data)
		if err != nil {
			return fmt.Errorf("extracting from %s: %w", rel, err)
		}
		if len(lines) == 0 {
			continue
		}

		fmt.Fprintf(&section, "\n### %s (%s)\n\n", rel, rec.Kind)
		for _, line := range lines {
			section.WriteString(line)
			section.WriteString("\n")
		}
		entries++
	}

	// Nothing extracted from any matched file: leave the artifact
	// alone rather than appending a header-only section.
	if entries == 0 {
		return nil
	}

	out := filepath.Join(g.root, rule.OutputPath)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := os.WriteFile(out, append(content, []byte(section.String())...), 0644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", rule.OutputPath, err)
	}
	return nil
}

// loadOrSeed returns the existing artifact content, or seeds a new one
// from the rule's template (or a default header) when absent.
func (g *Generator) loadOrSeed(rule Rule) ([]byte, error) {
	out := filepath.Join(g.root, rule.OutputPath)
	if content, err := os.ReadFile(out); err == nil {
		return content, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading artifact %s: %w", rule.OutputPath, err)
	}

	if rule.Template != "" {
		tmpl, err := os.ReadFile(filepath.Join(g.root, rule.Template))
		if err == nil {
			return tmpl, nil
		}
		log.Printf("Warning: template %s unreadable for rule %s: %v (using default header)",
			rule.Template, rule.ID, err)
	}

	title := "Project"
	switch {
	case rule.ID == "api":
		title = "API"
	case rule.ID != "":
		title = strings.ToUpper(rule.ID[:1]) + rule.ID[1:]
	}
	return []byte(fmt.Sprintf("# %s Documentation\n\nGenerated by docsync. Do not edit manually.\n", title)), nil
}

func (g *Generator) relPath(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(g.root, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(p)
}

func (g *Generator) absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.root, p)
}
