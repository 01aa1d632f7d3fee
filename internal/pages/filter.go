package pages

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter reports whether a template filename should produce a page.
type Filter func(filename string) bool

// ExcludeNames drops files whose base name equals one of names, ignoring
// case and extension. "readme" excludes README.md, readme.txt and README.
func ExcludeNames(names ...string) Filter {
	reserved := make(map[string]bool, len(names))
	for _, n := range names {
		reserved[strings.ToLower(n)] = true
	}
	return func(filename string) bool {
		base := filename
		if i := strings.LastIndex(filename, "."); i > 0 {
			base = filename[:i]
		}
		return !reserved[strings.ToLower(base)]
	}
}

// RequireExt keeps only files with one of the given extensions. Extensions
// may be written with or without the leading dot.
func RequireExt(exts ...string) Filter {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[normalizeExt(e)] = true
	}
	return func(filename string) bool {
		i := strings.LastIndex(filename, ".")
		if i < 0 {
			return false
		}
		return allowed[normalizeExt(filename[i+1:])]
	}
}

// ExcludeGlob drops files matching any of the doublestar patterns. Patterns
// should be checked with doublestar.ValidatePattern beforehand; a malformed
// pattern matches nothing.
func ExcludeGlob(patterns ...string) Filter {
	return func(filename string) bool {
		for _, p := range patterns {
			if ok, err := doublestar.Match(p, filename); err == nil && ok {
				return false
			}
		}
		return true
	}
}

// All keeps a file only if every non-nil filter keeps it.
func All(filters ...Filter) Filter {
	return func(filename string) bool {
		for _, f := range filters {
			if f != nil && !f(filename) {
				return false
			}
		}
		return true
	}
}
