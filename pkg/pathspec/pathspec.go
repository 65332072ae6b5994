// Package pathspec turns heterogeneous user-supplied path strings into
// (root, pattern) pairs. It is purely lexical: no function here touches the
// filesystem, and any input string is normalizable.
package pathspec

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stagehand/pkg/logging"
)

// PatternSelf marks the root itself as the literal copy target.
const PatternSelf = "."

// PatternContents means "everything under the root", i.e. the directory's
// contents rather than the directory node.
const PatternContents = "**"

// Normalize turns one raw path or glob string plus a context base directory
// into a (root, pattern) pair.
//
// Absolute inputs carry their own root:
//
//	/abs/path/**  ->  root=/abs/path  pattern="**"
//	/abs/path/    ->  root=/abs/path  pattern="**"  (trailing slash: contents)
//	/abs/path     ->  root=/abs/path  pattern="."   (literal target)
//
// Relative inputs keep the context base as root and the string verbatim,
// trailing slash and ** markers included; it stays a pattern to be expanded
// later against the root.
func Normalize(raw, contextBase string) (root, pattern string) {
	logger := logging.GetLogger("pathspec")

	s := NormalizeString(raw)

	if isAbs(s) {
		switch {
		case strings.HasSuffix(s, "/**"):
			root = cleanAbs(strings.TrimSuffix(s, "/**"))
			pattern = PatternContents
		case strings.HasSuffix(s, "/"):
			root = cleanAbs(strings.TrimSuffix(s, "/"))
			pattern = PatternContents
		default:
			root = cleanAbs(s)
			pattern = PatternSelf
		}
	} else {
		root = cleanAbs(contextBase)
		pattern = s
	}

	logger.Trace().Str("raw", raw).Str("root", root).Str("pattern", pattern).Msg("normalized")
	return root, pattern
}

// NormalizeString normalizes a user-supplied path string for cross-platform
// use: both separators become '/', escaped spaces become real spaces (with a
// warning), redundant slashes collapse except after protocol prefixes like
// "file://", and surrounding whitespace is trimmed. Purely lexical; never
// fails.
func NormalizeString(raw string) string {
	if raw == "" {
		return ""
	}

	path := strings.TrimSpace(raw)

	if strings.Contains(path, `\ `) {
		fixed := strings.ReplaceAll(path, `\ `, " ")
		logger := logging.GetLogger("pathspec")
		logger.Warn().
			Str("from", path).Str("to", fixed).
			Msg("Normalizing escaped spaces in path")
		path = fixed
	}

	path = strings.ReplaceAll(path, `\`, "/")

	return collapseSlashes(path)
}

// collapseSlashes reduces runs of '/' to one, keeping the double slash of a
// protocol prefix ("file://", "http://") intact.
func collapseSlashes(path string) string {
	var b strings.Builder
	b.Grow(len(path))

	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' && i+1 < len(path) && path[i+1] == '/' {
			// A colon right before the run means a protocol prefix: keep
			// exactly two slashes.
			if i > 0 && path[i-1] == ':' {
				b.WriteString("//")
				for i+1 < len(path) && path[i+1] == '/' {
					i++
				}
				continue
			}
			for i+1 < len(path) && path[i+1] == '/' {
				i++
			}
		}
		b.WriteByte(c)
	}

	return b.String()
}

// HasGlobChars reports whether s contains shell glob metacharacters.
func HasGlobChars(s string) bool {
	return strings.ContainsAny(s, "*?[]")
}

// GlobRoot returns the longest leading portion of a pattern with no glob
// metacharacters, in slash form. Used for missing-path diagnostics and for
// computing copy destinations of glob includes.
func GlobRoot(pattern string) string {
	if pattern == "" {
		return ""
	}

	normalized := NormalizeString(pattern)

	var parts []string
	for _, part := range strings.Split(normalized, "/") {
		if HasGlobChars(part) {
			break
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "/")
}

func isAbs(s string) bool {
	// Forward-slash form may hide a Windows drive path ("C:/x"); filepath
	// handles both on the host platform, the leading slash covers the rest.
	return strings.HasPrefix(s, "/") || filepath.IsAbs(filepath.FromSlash(s))
}

func cleanAbs(p string) string {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		// Abs only fails when the working directory is gone; fall back to a
		// lexical clean so normalization still cannot fail.
		return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	}
	return filepath.ToSlash(abs)
}
