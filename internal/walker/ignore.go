package walker

import (
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreRule is one line of a .gitignore file.
type ignoreRule struct {
	pattern  string
	negate   bool // "!pattern" re-includes
	dirOnly  bool // "pattern/" only matches directories
	anchored bool // a leading or inner slash ties the pattern to the root
}

type ignoreRules []ignoreRule

// loadIgnoreFile parses a .gitignore. A missing or unreadable file yields no rules.
func loadIgnoreFile(path string) ignoreRules {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var rules ignoreRules
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var r ignoreRule
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			r.negate, line = true, rest
		}
		if rest, ok := strings.CutSuffix(line, "/"); ok {
			r.dirOnly, line = true, rest
		}
		if rest, ok := strings.CutPrefix(line, "/"); ok {
			r.anchored, line = true, rest
		}
		r.anchored = r.anchored || strings.Contains(line, "/")
		if line == "" || !doublestar.ValidatePattern(line) {
			continue
		}
		r.pattern = line
		rules = append(rules, r)
	}
	return rules
}

// match reports whether rel is ignored. Later rules override earlier ones.
func (rs ignoreRules) match(rel string, isDir bool) bool {
	ignored := false
	for _, r := range rs {
		if r.dirOnly && !isDir {
			continue
		}
		pattern := r.pattern
		if !r.anchored {
			pattern = "**/" + pattern
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			ignored = !r.negate
		}
	}
	return ignored
}
