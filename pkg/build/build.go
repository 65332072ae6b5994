// Package build executes resolved build configurations: it expands include
// patterns, computes destinations under the output directory, and copies
// matching files and directories while honoring exclusions.
package build

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/exclusion"
	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/pathspec"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// RunAllBuilds executes every resolved build in order. A build's own
// log_level is applied only for the duration of that build. Entry-level
// copy failures do not stop the run; the first error is returned after all
// builds have been attempted.
func RunAllBuilds(builds []types.BuildConfigResolved, dryRun bool) error {
	logger := logging.GetLogger("build")
	rootLevel := logging.Default.Level()

	var firstErr error
	for i, cfg := range builds {
		cfg.DryRun = cfg.DryRun || dryRun

		if cfg.LogLevel != "" && cfg.LogLevel != rootLevel {
			restore := logging.Default.PushLevel(cfg.LogLevel)
			logger.Debug().Msgf("Overriding log level: %s", cfg.LogLevel)
			logger.Info().Msgf("Build %d/%d", i+1, len(builds))
			err := RunBuild(cfg)
			restore()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}

		logger.Info().Msgf("Build %d/%d", i+1, len(builds))
		if err := RunBuild(cfg); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		logger.Info().Msg("All builds complete.")
	}
	return firstErr
}

// RunBuild executes a single build: the output directory is removed and
// recreated, then every include is expanded and copied.
func RunBuild(cfg types.BuildConfigResolved) error {
	logger := logging.GetLogger("build")
	outDir := filepath.Join(cfg.Out.Root, cfg.Out.Path)

	logger.Trace().
		Str("outDir", outDir).
		Int("includes", len(cfg.Include)).
		Msg("starting build")

	if err := prepareOutputDir(outDir, cfg.DryRun); err != nil {
		return err
	}

	failed := 0
	for _, inc := range cfg.Include {
		pattern := strings.TrimSpace(inc.Path)
		if pattern == "" {
			logger.Debug().Msg("Skipping empty include pattern")
			continue
		}

		matches := expandIncludePattern(inc.Path, inc.Root)
		if len(matches) == 0 {
			logger.Debug().Msgf("No matches for %s", inc.Path)
			continue
		}

		failed += copyMatches(matches, inc, cfg.Exclude, cfg.Out, outDir, cfg.DryRun)
	}

	if failed > 0 {
		return errors.Newf(errors.ErrCopyFailed, "%d entries failed to copy into %s", failed, outDir)
	}
	logger.Info().Msgf("Build completed: %s", outDir)
	return nil
}

// CollectIncludedFiles flattens every build's include patterns into a
// sorted, deduplicated list of matching files. The watch loop calls this
// each tick so newly created files are picked up.
func CollectIncludedFiles(builds []types.BuildConfigResolved) []string {
	seen := make(map[string]bool)
	var files []string
	for _, cfg := range builds {
		for _, inc := range cfg.Include {
			if strings.TrimSpace(inc.Path) == "" {
				continue
			}
			for _, match := range expandIncludePattern(inc.Path, inc.Root) {
				info, err := os.Stat(match)
				if err != nil || info.IsDir() {
					continue
				}
				if !seen[match] {
					seen[match] = true
					files = append(files, match)
				}
			}
		}
	}
	sort.Strings(files)
	return files
}

// prepareOutputDir removes any previous output and recreates the directory.
// In dry-run mode it only says what it would do.
func prepareOutputDir(outDir string, dryRun bool) error {
	logger := logging.GetLogger("build")

	if _, err := os.Stat(outDir); err == nil {
		if dryRun {
			logger.Info().Msgf("(dry-run) Would remove existing directory: %s", outDir)
		} else if err := os.RemoveAll(outDir); err != nil {
			return errors.Wrapf(err, errors.ErrOutDirPrepare, "cannot clean output directory %s", outDir)
		}
	}
	if dryRun {
		logger.Info().Msgf("(dry-run) Would create: %s", outDir)
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrOutDirPrepare, "cannot create output directory %s", outDir)
	}
	return nil
}

// expandIncludePattern lists everything a pattern names under its root.
//
// Trailing-slash and "**" forms walk the named directory for files; glob
// patterns expand with doublestar over the root; a literal pattern is the
// single joined path.
func expandIncludePattern(pattern, root string) []string {
	logger := logging.GetLogger("build")

	switch {
	case strings.HasSuffix(pattern, "/") && !pathspec.HasGlobChars(pattern):
		dir := filepath.Join(root, strings.TrimSuffix(pattern, "/"))
		return walkFiles(dir)

	case pattern == pathspec.PatternContents || strings.HasSuffix(pattern, "/**"):
		dir := filepath.Join(root, strings.TrimSuffix(strings.TrimSuffix(pattern, "**"), "/"))
		return walkFiles(dir)

	case pathspec.HasGlobChars(pattern):
		rels, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			logger.Debug().Err(err).Msgf("Invalid pattern: %s", pattern)
			return nil
		}
		matches := make([]string, len(rels))
		for i, rel := range rels {
			matches[i] = filepath.Join(root, rel)
		}
		return matches

	default:
		return []string{filepath.Join(root, pattern)}
	}
}

// walkFiles returns every regular file under dir. A missing dir yields no
// matches.
func walkFiles(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// copyMatches copies every expansion of one include entry, returning the
// number of entries that failed.
func copyMatches(matches []string, inc types.IncludeResolved, excludes []types.PathResolved, out types.PathResolved, outDir string, dryRun bool) int {
	logger := logging.GetLogger("build")

	failed := 0
	for _, src := range matches {
		if _, err := os.Stat(src); err != nil {
			logger.Debug().Msgf("Missing: %s", src)
			continue
		}

		dest := computeDest(src, inc.Root, outDir, inc.Path, inc.Dest)

		srcEntry := types.PathResolved{Path: src, Root: inc.Root, Origin: inc.Origin, Pattern: inc.Path}
		destEntry := types.PathResolved{Path: dest, Root: outDir, Origin: out.Origin}

		if err := copyItem(srcEntry, destEntry, excludes, dryRun); err != nil {
			logger.Error().Err(err).Msgf("Failed to copy %s", src)
			failed++
		}
	}
	return failed
}

// computeDest places one matched source under the output directory.
//
// A dest override wins outright. Trailing-slash includes drop the named
// directory from the destination, keeping only the part beneath it. Glob
// includes strip the pattern's non-glob prefix. Literal includes keep their
// full root-relative structure. A source outside its root falls back to the
// bare filename.
func computeDest(src, root, outDir, pattern, destName string) string {
	if destName != "" {
		return filepath.Join(outDir, destName)
	}

	if strings.HasSuffix(pattern, "/") {
		base := filepath.Join(root, strings.TrimSuffix(pattern, "/"))
		if rel, ok := relUnder(src, base); ok {
			return filepath.Join(outDir, rel)
		}
		return filepath.Join(outDir, filepath.Base(src))
	}

	if pathspec.HasGlobChars(pattern) {
		base := filepath.Join(root, pathspec.GlobRoot(pattern))
		if rel, ok := relUnder(src, base); ok {
			return filepath.Join(outDir, rel)
		}
		return filepath.Join(outDir, filepath.Base(src))
	}

	if rel, ok := relUnder(src, root); ok {
		return filepath.Join(outDir, rel)
	}
	return filepath.Join(outDir, filepath.Base(src))
}

// relUnder reports src relative to base when src lies beneath it.
func relUnder(src, base string) (string, bool) {
	rel, err := filepath.Rel(base, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// copyItem copies one file or directory entry after an exclusion check.
// A shallow single-star directory match (one "*", no "**") creates the
// directory node only.
func copyItem(srcEntry, destEntry types.PathResolved, excludes []types.PathResolved, dryRun bool) error {
	logger := logging.GetLogger("build")

	src := srcEntry.Path
	if !filepath.IsAbs(src) {
		src = filepath.Join(srcEntry.Root, src)
	}
	dest := destEntry.Path
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(destEntry.Root, dest)
	}

	patterns := make([]string, len(excludes))
	for i, e := range excludes {
		patterns[i] = e.Path
	}

	pattern := srcEntry.Pattern
	if pattern == "" {
		pattern = srcEntry.Path
	}

	logger.Trace().
		Str("origin", string(srcEntry.Origin)).
		Str("src", src).
		Str("dest", dest).
		Str("pattern", pattern).
		Int("excludes", len(patterns)).
		Msg("copy item")

	if exclusion.IsExcludedRaw(src, patterns, srcEntry.Root) {
		logger.Debug().Msgf("Skipped (excluded): %s", displayRel(src, srcEntry.Root))
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot stat %s", src)
	}

	if info.IsDir() && isShallowStar(pattern) {
		logger.Trace().Msgf("shallow directory match %s from pattern %q", displayRel(src, srcEntry.Root), pattern)
		if dryRun {
			return nil
		}
		return os.MkdirAll(dest, 0o755)
	}

	if info.IsDir() {
		return copyDirectory(src, dest, patterns, srcEntry.Root, dryRun)
	}
	return copyFile(src, dest, srcEntry.Root, dryRun)
}

// isShallowStar reports a pattern with single-star globbing and no
// recursive component.
func isShallowStar(pattern string) bool {
	return strings.Contains(pattern, "*") && !strings.Contains(pattern, "**")
}

// copyFile copies one file, creating parent directories and preserving
// mode and modification time.
func copyFile(src, dest, srcRoot string, dryRun bool) error {
	logger := logging.GetLogger("build")

	// A directory destination receives the file under its own name. This
	// is how a literal absolute include lands in the output directory.
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	logger.Debug().Msgf("%s -> %s", displayRel(src, srcRoot), displayRel(dest, srcRoot))

	if dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot create %s", filepath.Dir(dest))
	}
	return copyPreserving(src, dest)
}

// copyDirectory recursively copies directory contents, skipping excluded
// files and directories. Exclusion matching is relative to srcRoot, the
// original include root; trailing-slash patterns expand to directory-wide
// forms before matching.
func copyDirectory(src, dest string, excludePatterns []string, srcRoot string, dryRun bool) error {
	logger := logging.GetLogger("build")
	patterns := exclusion.ExpandDirPatterns(excludePatterns)

	if !dryRun {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrCopyFailed, "cannot create %s", dest)
		}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot read %s", src)
	}

	for _, entry := range entries {
		item := filepath.Join(src, entry.Name())
		if exclusion.IsExcludedRaw(item, patterns, srcRoot) {
			logger.Debug().Msgf("Skipped: %s", displayRel(item, srcRoot))
			continue
		}

		target := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			logger.Trace().Msgf("dir %s", displayRel(item, srcRoot))
			if err := copyDirectory(item, target, patterns, srcRoot, dryRun); err != nil {
				return err
			}
			continue
		}

		logger.Debug().Msgf("%s", displayRel(item, srcRoot))
		if dryRun {
			continue
		}
		if err := copyPreserving(item, target); err != nil {
			return err
		}
	}
	return nil
}

// copyPreserving writes dest from src, carrying over file mode and mtime.
func copyPreserving(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot stat %s", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot create %s", dest)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot write %s", dest)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrCopyFailed, "cannot finish %s", dest)
	}

	_ = os.Chmod(dest, info.Mode().Perm())
	_ = os.Chtimes(dest, info.ModTime(), info.ModTime())
	return nil
}

// displayRel shortens a path for log lines when it sits under base.
func displayRel(path, base string) string {
	if rel, ok := relUnder(path, base); ok {
		return rel
	}
	return path
}
