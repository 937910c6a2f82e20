// Package generate regenerates documentation artifacts from batches of
// change records.
//
// Generation is rule-driven: each rule pairs a set of path patterns
// with one output artifact and an extractor for its content category.
// Rules are iterated uniformly; adding a category means registering a
// new (patterns, output, extractor) triple, never touching the
// generator's control flow.
package generate

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tradewind/docsync/internal/config"
	"github.com/tradewind/docsync/internal/tracker"
)

// Extractor pulls documentation fragments out of one changed file.
// It receives the change record and the current file content and
// returns rendered markdown bullet lines.
type Extractor func(rec tracker.ChangeRecord, content []byte) ([]string, error)

// Rule maps path patterns to one generated artifact.
type Rule struct {
	ID         string
	Enabled    bool
	Patterns   []string
	OutputPath string
	Template   string
	Extract    Extractor
}

// Matches reports whether path matches any of the rule's patterns.
// Patterns use doublestar syntax: `**` spans any number of path
// segments including none, `*` stays within one segment.
func (r *Rule) Matches(path string) bool {
	p := filepath.ToSlash(path)
	for _, pattern := range r.Patterns {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

// Registry holds the loaded rule table. Rules are configuration:
// loaded once, immutable during a run.
type Registry struct {
	rules []Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule. A nil extractor gets the generic fallback.
func (reg *Registry) Register(rule Rule) error {
	for _, existing := range reg.rules {
		if existing.ID == rule.ID {
			return fmt.Errorf("rule %q already registered", rule.ID)
		}
	}
	if rule.Extract == nil {
		rule.Extract = extractGeneric
	}
	reg.rules = append(reg.rules, rule)
	return nil
}

// Rules returns the rule table in registration order.
func (reg *Registry) Rules() []Rule {
	return reg.rules
}

// FromConfig builds a registry from the autoGenRules config section.
// Known category ids get their built-in extractor; unknown ids get the
// generic one. Ids are sorted so the table order is stable.
func FromConfig(cfgRules map[string]config.RuleConfig) *Registry {
	ids := make([]string, 0, len(cfgRules))
	for id := range cfgRules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	reg := NewRegistry()
	for _, id := range ids {
		rc := cfgRules[id]
		// Register only errors on duplicates, impossible here.
		_ = reg.Register(Rule{
			ID:         id,
			Enabled:    rc.Enabled,
			Patterns:   rc.Patterns,
			OutputPath: rc.OutputPath,
			Template:   rc.Template,
			Extract:    builtinExtractor(id),
		})
	}
	return reg
}

// builtinExtractor returns the extractor for a known category id, or
// the generic fallback.
func builtinExtractor(id string) Extractor {
	switch id {
	case "api":
		return extractAPIRoutes
	case "components":
		return extractComponents
	case "modules":
		return extractModules
	case "architecture":
		return extractArchitecture
	default:
		return extractGeneric
	}
}
