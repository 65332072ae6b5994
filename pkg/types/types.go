// Package types defines the shared data model for stagehand: origin-tagged
// resolved paths, raw (user-declared) build configuration, and the fully
// resolved build description consumed by the executor and watch loop.
package types

import "time"

// Origin tags where a resolved path entry came from. It drives diagnostics
// and exclusion policy (only gitignore-origin excludes are affected by the
// respect_gitignore toggle).
type Origin string

const (
	OriginCLI       Origin = "cli"
	OriginConfig    Origin = "config"
	OriginGitignore Origin = "gitignore"
	OriginDefault   Origin = "default"
)

// PathResolved is one concrete path or pattern anchored to a root directory.
//
// Root is always an absolute directory (or, for literal absolute includes,
// the target itself). Path is either a relative pattern string preserved
// verbatim (trailing slash and ** markers intact), "**" (the root's
// contents), or "." (the root itself as a literal copy target).
type PathResolved struct {
	Path   string
	Root   string
	Origin Origin

	// Pattern records the include pattern that produced this entry once it
	// has been expanded to a concrete file; empty before expansion.
	Pattern string
}

// IncludeResolved is a PathResolved with an optional destination override.
type IncludeResolved struct {
	PathResolved

	// Dest, when non-empty, names the target under the output directory
	// instead of the source-relative location.
	Dest string
}

// BuildConfig is one loosely-typed, user-declared build entry. Pointer and
// nil-slice fields distinguish "absent" from "explicitly set".
type BuildConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`

	StrictConfig     *bool  `mapstructure:"strict_config"`
	Out              string `mapstructure:"out"`
	RespectGitignore *bool  `mapstructure:"respect_gitignore"`
	LogLevel         string `mapstructure:"log_level"`
}

// RootConfig is the normalized top-level configuration before resolution.
type RootConfig struct {
	Builds []BuildConfig `mapstructure:"builds"`

	// Defaults that cascade into each build.
	LogLevel         string `mapstructure:"log_level"`
	Out              string `mapstructure:"out"`
	RespectGitignore *bool  `mapstructure:"respect_gitignore"`

	StrictConfig  *bool    `mapstructure:"strict_config"`
	WatchInterval *float64 `mapstructure:"watch_interval"`
}

// ResolveMeta records the base directories used during resolution.
type ResolveMeta struct {
	CLIRoot    string
	ConfigRoot string
}

// BuildConfigResolved is one fully resolved build unit. It is immutable once
// produced and owned exclusively by a single build execution.
type BuildConfigResolved struct {
	Include []IncludeResolved
	Exclude []PathResolved
	Out     PathResolved

	RespectGitignore bool
	LogLevel         string
	DryRun           bool

	Meta ResolveMeta
}

// RootConfigResolved fixes all root-level defaults and hoists environment
// and CLI overrides.
type RootConfigResolved struct {
	Builds []BuildConfigResolved

	LogLevel      string
	StrictConfig  bool
	WatchInterval time.Duration
}
