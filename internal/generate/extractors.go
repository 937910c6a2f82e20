package generate

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tradewind/docsync/internal/tracker"
)

// Route-registration idioms. The JS form covers express-style
// `router.get('/orders', listOrders)`; the Python form covers
// FastAPI-style decorators `@router.get("/orders")`.
var (
	jsRouteRe = regexp.MustCompile("(?m)\\b(?:router|app|api|server)\\.(get|post|put|delete|patch)\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]\\s*(?:,\\s*([A-Za-z_$][\\w$.]*))?")
	pyRouteRe = regexp.MustCompile(`^\s*@(?:app|router|api|bp)\.(get|post|put|delete|patch)\(\s*['"]([^'"]+)['"]`)
	pyDefRe   = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`)
)

// extractAPIRoutes recovers HTTP method, full path, and handler name
// from route registrations in the changed file. The endpoint path is
// rooted at the file's position under an `api` directory, so a
// registration of `/orders` in backend/api/v1/orders.py documents as
// `/api/v1/orders`.
func extractAPIRoutes(rec tracker.ChangeRecord, content []byte) ([]string, error) {
	prefix := apiPathPrefix(rec.Path)
	var lines []string
	seen := make(map[string]bool)

	add := func(method, route, handler string) {
		full := joinRoute(prefix, route)
		key := method + " " + full
		if seen[key] {
			return
		}
		seen[key] = true
		entry := fmt.Sprintf("- `%s %s`", strings.ToUpper(method), full)
		if handler != "" {
			entry += fmt.Sprintf(" handler `%s`", handler)
		}
		entry += fmt.Sprintf(" (%s)", rec.Path)
		lines = append(lines, entry)
	}

	if strings.HasSuffix(rec.Path, ".py") {
		// Python decorators bind to the def on a following line.
		srcLines := strings.Split(string(content), "\n")
		for i, line := range srcLines {
			m := pyRouteRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			handler := ""
			for j := i + 1; j < len(srcLines) && j <= i+5; j++ {
				if d := pyDefRe.FindStringSubmatch(srcLines[j]); d != nil {
					handler = d[1]
					break
				}
			}
			add(m[1], m[2], handler)
		}
	} else {
		for _, m := range jsRouteRe.FindAllStringSubmatch(string(content), -1) {
			add(m[1], m[2], m[3])
		}
	}

	return lines, nil
}

// apiPathPrefix derives the endpoint prefix from the file's location:
// everything from the `api` path segment up to the file's directory.
// Files outside an api directory get no prefix.
func apiPathPrefix(relPath string) string {
	segments := strings.Split(filepath.ToSlash(relPath), "/")
	for i, seg := range segments {
		if seg == "api" {
			dir := segments[i : len(segments)-1]
			if len(dir) == 0 {
				return ""
			}
			return "/" + strings.Join(dir, "/")
		}
	}
	return ""
}

func joinRoute(prefix, route string) string {
	if prefix == "" {
		return route
	}
	if strings.HasPrefix(route, prefix+"/") || route == prefix {
		return route
	}
	return prefix + "/" + strings.TrimPrefix(route, "/")
}

// Export-declaration idioms for TS/JS component and module files.
var exportRes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^export\s+default\s+function\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`(?m)^export\s+(?:async\s+)?function\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`(?m)^export\s+(?:default\s+)?class\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`(?m)^export\s+const\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`(?m)^export\s+(?:interface|type|enum)\s+([A-Za-z_$][\w$]*)`),
}

var (
	pyTopDefRe   = regexp.MustCompile(`(?m)^(?:async\s+)?def\s+([A-Za-z]\w*)`)
	pyTopClassRe = regexp.MustCompile(`(?m)^class\s+([A-Za-z]\w*)`)
)

func exportedNames(content []byte) []string {
	var names []string
	seen := make(map[string]bool)
	for _, re := range exportRes {
		for _, m := range re.FindAllStringSubmatch(string(content), -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}

// extractComponents scans export declarations in UI component files.
func extractComponents(rec tracker.ChangeRecord, content []byte) ([]string, error) {
	var lines []string
	for _, name := range exportedNames(content) {
		lines = append(lines, fmt.Sprintf("- component `%s` (%s)", name, rec.Path))
	}
	return lines, nil
}

// extractModules builds an exported-symbol inventory for a module
// file; Python files contribute their top-level defs and classes.
func extractModules(rec tracker.ChangeRecord, content []byte) ([]string, error) {
	var names []string
	if strings.HasSuffix(rec.Path, ".py") {
		seen := make(map[string]bool)
		for _, re := range []*regexp.Regexp{pyTopClassRe, pyTopDefRe} {
			for _, m := range re.FindAllStringSubmatch(string(content), -1) {
				if !seen[m[1]] {
					seen[m[1]] = true
					names = append(names, m[1])
				}
			}
		}
	} else {
		names = exportedNames(content)
	}

	if len(names) == 0 {
		return nil, nil
	}
	return []string{fmt.Sprintf("- `%s` exports: %s", rec.Path, strings.Join(wrap(names), ", "))}, nil
}

func wrap(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "`" + n + "`"
	}
	return out
}

// extractArchitecture contributes a directory-level change note.
func extractArchitecture(rec tracker.ChangeRecord, content []byte) ([]string, error) {
	dir := path.Dir(filepath.ToSlash(rec.Path))
	return []string{fmt.Sprintf("- `%s`: %s %s", dir, path.Base(rec.Path), rec.Kind)}, nil
}

// extractGeneric is the fallback for categories without a dedicated
// extractor.
func extractGeneric(rec tracker.ChangeRecord, content []byte) ([]string, error) {
	n := strings.Count(string(content), "\n")
	return []string{fmt.Sprintf("- %s (%s, %d lines)", rec.Path, rec.Kind, n)}, nil
}
