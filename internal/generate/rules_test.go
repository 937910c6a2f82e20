package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradewind/docsync/internal/config"
)

func TestRuleMatchesGlobs(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/api/**/*.ts", "backend/api/v1/orders.ts", true},
		{"**/api/**/*.ts", "api/orders.ts", true},
		{"**/api/**/*.ts", "backend/apiary/orders.ts", false},
		{"**/api/**/*.ts", "backend/api/v1/orders.py", false},
		{"*.tsx", "Button.tsx", true},
		{"*.tsx", "components/Button.tsx", false},
		{"**/components/**/*.tsx", "src/components/Button.tsx", true},
		{"src/**/*.ts", "src/deep/nested/util.ts", true},
		{"src/**/*.ts", "lib/util.ts", false},
	}

	for _, tt := range tests {
		rule := Rule{Patterns: []string{tt.pattern}}
		assert.Equal(t, tt.want, rule.Matches(tt.path),
			"pattern %q against %q", tt.pattern, tt.path)
	}
}

func TestRuleMatchesAnyPattern(t *testing.T) {
	rule := Rule{Patterns: []string{"**/*.py", "**/*.ts"}}
	assert.True(t, rule.Matches("backend/app.py"))
	assert.True(t, rule.Matches("src/index.ts"))
	assert.False(t, rule.Matches("src/index.jsx"))
}

func TestRegistryRejectsDuplicateIDs(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Rule{ID: "api", OutputPath: "docs/API.md"}))
	assert.Error(t, reg.Register(Rule{ID: "api", OutputPath: "docs/API2.md"}))
}

func TestFromConfigStableOrderAndExtractors(t *testing.T) {
	reg := FromConfig(map[string]config.RuleConfig{
		"modules":    {Enabled: true, Patterns: []string{"**/*.ts"}, OutputPath: "docs/MODULES.md"},
		"api":        {Enabled: true, Patterns: []string{"**/api/**"}, OutputPath: "docs/API.md"},
		"changelogs": {Enabled: true, Patterns: []string{"**/*.md"}, OutputPath: "docs/CHANGES.md"},
	})

	rules := reg.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "api", rules[0].ID)
	assert.Equal(t, "changelogs", rules[1].ID)
	assert.Equal(t, "modules", rules[2].ID)
	for _, r := range rules {
		assert.NotNil(t, r.Extract, "rule %s must always carry an extractor", r.ID)
	}
}
