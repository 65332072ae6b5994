// Package exclusion decides whether candidate paths match a set of exclude
// entries, with root-relative semantics and directory-only trailing-slash
// rules.
//
// Glob matching uses doublestar: `*` and `?` stay within one path segment,
// `[...]` classes are supported, and `**` is deliberately recursive across
// directory boundaries. That recursive `**` semantics is a fixed property of
// this package, not of the host platform.
package exclusion

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// IsExcluded reports whether the candidate entry matches any exclude entry.
// Patterns are taken from the exclude entries' Path fields; matching is
// anchored at the candidate's own root.
func IsExcluded(candidate types.PathResolved, excludes []types.PathResolved) bool {
	patterns := make([]string, len(excludes))
	for i, e := range excludes {
		patterns[i] = e.Path
	}
	return IsExcludedRaw(candidate.Path, patterns, candidate.Root)
}

// IsExcludedRaw matches one path against exclude patterns relative to root.
//
//   - path is treated as relative to root unless already absolute.
//   - If root itself is a file, the check degenerates to "is path exactly
//     that file".
//   - A candidate outside root never matches; that is not an error.
//   - A pattern ending in "/" also excludes everything under the named
//     directory.
//
// Pure except for a debug diagnostic when root does not exist; the caller
// is responsible for reacting to a missing root.
func IsExcludedRaw(path string, patterns []string, root string) bool {
	logger := logging.GetLogger("exclusion")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	info, statErr := os.Stat(absRoot)
	if statErr != nil {
		logger.Debug().Str("root", absRoot).Msg("Exclusion root does not exist")
	}

	// A file root is a direct exclusion target with no pattern set to
	// consult.
	if statErr == nil && !info.IsDir() {
		full := path
		if !filepath.IsAbs(full) {
			full = filepath.Join(filepath.Dir(absRoot), full)
		}
		return filepath.Clean(full) == filepath.Clean(absRoot)
	}

	if len(patterns) == 0 {
		return false
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(absRoot, full)
	}

	rel, err := filepath.Rel(absRoot, full)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		// Outside the root; never match.
		return false
	}

	slashRoot := filepath.ToSlash(absRoot)

	for _, pattern := range patterns {
		pat := filepath.ToSlash(pattern)

		// An absolute pattern under the root is rewritten root-relative; an
		// unrelated absolute pattern is kept literal and will simply never
		// match the relative candidate.
		if strings.HasPrefix(pat, slashRoot) {
			if patRel, err := filepath.Rel(absRoot, filepath.FromSlash(pat)); err == nil {
				pr := filepath.ToSlash(patRel)
				if pr != ".." && !strings.HasPrefix(pr, "../") {
					if ok, _ := doublestar.Match(pr, rel); ok {
						return true
					}
				}
			}
		}

		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}

		// Trailing slash: directory-only prefix exclusion.
		if strings.HasSuffix(pat, "/") && strings.HasPrefix(rel, strings.TrimSuffix(pat, "/")+"/") {
			return true
		}
	}

	return false
}

// ExpandDirPatterns widens every directory-marker pattern ("name/") so a
// recursive copy also skips the directory node itself and anything beneath
// it at any depth.
func ExpandDirPatterns(patterns []string) []string {
	expanded := make([]string, 0, len(patterns))
	for _, p := range patterns {
		expanded = append(expanded, p)
		if strings.HasSuffix(p, "/") {
			core := strings.TrimRight(p, "/")
			expanded = append(expanded, core, "**/"+core, "**/"+core+"/**")
		}
	}
	return expanded
}
