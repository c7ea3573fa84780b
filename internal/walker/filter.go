package walker

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrBadPattern is returned for include or exclude patterns doublestar cannot parse.
var ErrBadPattern = errors.New("walker: invalid glob pattern")

// dependencyDirs are never searched for assets to fit.
var dependencyDirs = map[string]bool{
	"node_modules":     true,
	"vendor":           true,
	"bower_components": true,
}

// skipDir reports whether a directory is hidden or holds third-party code.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || dependencyDirs[strings.ToLower(name)]
}

// Filter applies include and exclude patterns to slash-separated relative
// paths. A pattern matches either the whole path or the file name alone.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the patterns and returns a Filter.
func NewFilter(include, exclude []string) (*Filter, error) {
	for _, list := range [][]string{include, exclude} {
		for _, p := range list {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
			}
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Match reports whether rel is included and not excluded. No include
// patterns means everything is included.
func (f *Filter) Match(rel string) bool {
	if len(f.include) > 0 && !matchesAny(rel, f.include) {
		return false
	}
	return !matchesAny(rel, f.exclude)
}

// SkipDir reports whether an exclude pattern covers the whole directory rel,
// as "fitted/**" covers "fitted".
func (f *Filter) SkipDir(rel string) bool {
	for _, p := range f.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func matchesAny(rel string, patterns []string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
