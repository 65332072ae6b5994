package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/pathspec"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// ResolveBuildConfig turns one declared build into its resolved form:
// CLI overrides applied, include paths anchored to their roots, exclude
// patterns collected (config, CLI, gitignore) and deduplicated, and the
// output directory fixed.
//
// Includes and the output directory given on the CLI resolve against cwd;
// the same settings from the config file resolve against the config file's
// directory. --include and --exclude fully replace their config
// counterparts, while the add- variants always extend.
func ResolveBuildConfig(build types.BuildConfig, o *Overrides, configDir, cwd string, root *types.RootConfig) types.BuildConfigResolved {
	logger := logging.GetLogger("resolve")
	if o == nil {
		o = &Overrides{}
	}

	// Includes.
	var includes []types.IncludeResolved
	appendInclude := func(raw, base string, origin types.Origin) {
		root, pattern := pathspec.Normalize(raw, base)
		includes = append(includes, types.IncludeResolved{
			PathResolved: types.PathResolved{Path: pattern, Root: root, Origin: origin},
		})
	}

	switch {
	case len(o.Include) > 0:
		for _, raw := range o.Include {
			appendInclude(raw, cwd, types.OriginCLI)
		}
	case build.Include != nil:
		for _, raw := range build.Include {
			appendInclude(raw, configDir, types.OriginConfig)
		}
	}
	for _, raw := range o.AddInclude {
		appendInclude(raw, cwd, types.OriginCLI)
	}
	includes = dedupIncludes(includes, logger)

	// Excludes stay literal: patterns like "*.tmp" must match relative
	// paths beneath each include root, not absolute paths.
	var excludes []types.PathResolved
	appendExcludes := func(patterns []string, base string, origin types.Origin) {
		for _, raw := range patterns {
			excludes = append(excludes, types.PathResolved{Path: raw, Root: base, Origin: origin})
		}
	}

	switch {
	case len(o.Exclude) > 0:
		appendExcludes(o.Exclude, cwd, types.OriginCLI)
	case build.Exclude != nil:
		appendExcludes(build.Exclude, configDir, types.OriginConfig)
	}
	appendExcludes(o.AddExclude, cwd, types.OriginCLI)

	respectGitignore := resolveRespectGitignore(o, build, root)
	if respectGitignore {
		gitignorePath := filepath.Join(configDir, ".gitignore")
		patterns := loadGitignorePatterns(gitignorePath)
		if len(patterns) > 0 {
			logger.Trace().
				Int("count", len(patterns)).
				Str("path", gitignorePath).
				Msg("adding .gitignore patterns to excludes")
		}
		appendExcludes(patterns, configDir, types.OriginGitignore)
	}
	excludes = dedupExcludes(excludes)

	// Output directory.
	var out types.PathResolved
	switch {
	case o.Out != "":
		outRoot, pattern := pathspec.Normalize(o.Out, cwd)
		out = types.PathResolved{Path: pattern, Root: outRoot, Origin: types.OriginCLI}
	case build.Out != "":
		outRoot, pattern := pathspec.Normalize(build.Out, configDir)
		out = types.PathResolved{Path: pattern, Root: outRoot, Origin: types.OriginConfig}
	default:
		outRoot, pattern := pathspec.Normalize(DefaultOutDir, cwd)
		out = types.PathResolved{Path: pattern, Root: outRoot, Origin: types.OriginDefault}
	}

	rootLevel := ""
	if root != nil {
		rootLevel = root.LogLevel
	}

	return types.BuildConfigResolved{
		Include:          includes,
		Exclude:          excludes,
		Out:              out,
		RespectGitignore: respectGitignore,
		LogLevel:         DetermineLogLevel(o, rootLevel, build.LogLevel),
		DryRun:           o.DryRun,
		Meta:             types.ResolveMeta{CLIRoot: cwd, ConfigRoot: configDir},
	}
}

// ResolveConfig fully resolves a loaded root config into a ready-to-run
// description and syncs the global log level. A nil root config resolves
// as a single empty build driven entirely by overrides.
func ResolveConfig(root *types.RootConfig, o *Overrides, configDir, cwd string) types.RootConfigResolved {
	if root == nil {
		root = &types.RootConfig{Builds: []types.BuildConfig{{}}}
	}
	if o == nil {
		o = &Overrides{}
	}

	interval := DetermineWatchInterval(o, root.WatchInterval)
	logLevel := DetermineLogLevel(o, root.LogLevel, "")
	logging.Default.SetLevel(logLevel)

	buildsInput := root.Builds
	if len(buildsInput) == 0 {
		buildsInput = []types.BuildConfig{{}}
	}
	builds := make([]types.BuildConfigResolved, len(buildsInput))
	for i, b := range buildsInput {
		builds[i] = ResolveBuildConfig(b, o, configDir, cwd, root)
	}

	return types.RootConfigResolved{
		Builds:        builds,
		LogLevel:      logLevel,
		StrictConfig:  boolValue(root.StrictConfig, false),
		WatchInterval: time.Duration(interval * float64(time.Second)),
	}
}

// resolveRespectGitignore applies the gitignore toggle precedence: CLI,
// then the build's own setting, then the root default.
func resolveRespectGitignore(o *Overrides, build types.BuildConfig, root *types.RootConfig) bool {
	if o.RespectGitignore != nil {
		return *o.RespectGitignore
	}
	if build.RespectGitignore != nil {
		return *build.RespectGitignore
	}
	return boolValue(rootRespectGitignore(root), DefaultRespectGitignore)
}

// dedupIncludes keeps the first occurrence of each (path, root) pair and
// warns about roots and literal paths that do not exist.
func dedupIncludes(includes []types.IncludeResolved, logger zerolog.Logger) []types.IncludeResolved {
	seen := make(map[[2]string]bool, len(includes))
	unique := includes[:0]
	for _, inc := range includes {
		key := [2]string{inc.Path, inc.Root}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, inc)

		if _, err := os.Stat(inc.Root); err != nil {
			logger.Warn().Msgf("Include root does not exist: %s (origin: %s)", inc.Root, inc.Origin)
			continue
		}
		if !pathspec.HasGlobChars(inc.Path) && inc.Path != pathspec.PatternContents {
			full := filepath.Join(inc.Root, inc.Path)
			if _, err := os.Stat(full); err != nil {
				logger.Warn().Msgf("Include path does not exist: %s (origin: %s)", full, inc.Origin)
			}
		}
	}
	return unique
}

func dedupExcludes(excludes []types.PathResolved) []types.PathResolved {
	seen := make(map[[2]string]bool, len(excludes))
	unique := excludes[:0]
	for _, ex := range excludes {
		key := [2]string{ex.Path, ex.Root}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, ex)
	}
	return unique
}

// loadGitignorePatterns reads non-comment, non-blank lines. A missing file
// simply yields no patterns.
func loadGitignorePatterns(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
