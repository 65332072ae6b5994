// Package config finds, loads, parses, validates, and resolves stagehand
// configuration. Loading is deliberately staged: raw bytes become a
// loosely-typed tree, the tree is normalized into the canonical root shape,
// validated against the schema, decoded into typed structs, and finally
// resolved against the filesystem with CLI and environment overrides.
package config

import (
	"github.com/arthur-debert/stagehand/pkg/types"
)

// Program identity used for config discovery and environment lookups.
const (
	ProgramName = "stagehand"
	EnvPrefix   = "STAGEHAND_"

	EnvLogLevel      = EnvPrefix + "LOG_LEVEL"
	EnvWatchInterval = EnvPrefix + "WATCH_INTERVAL"
)

// Fallbacks applied when neither CLI, environment, nor config decide.
const (
	DefaultOutDir           = "dist"
	DefaultLogLevel         = "info"
	DefaultWatchInterval    = 1.0
	DefaultRespectGitignore = true
)

// Overrides carries every CLI-level knob into loading and resolution.
// Pointer fields distinguish "flag not given" from an explicit value.
type Overrides struct {
	// ConfigPath is the explicit --config path; empty means discover.
	ConfigPath string

	// Include and Exclude fully replace their config counterparts.
	// AddInclude and AddExclude always extend, never replace.
	Include    []string
	Exclude    []string
	AddInclude []string
	AddExclude []string

	Out      string
	LogLevel string

	RespectGitignore *bool
	StrictConfig     *bool

	// Watch is the polling interval in seconds when watch mode is on.
	Watch *float64

	DryRun bool
}

// CanRunConfigless reports whether the overrides alone describe something
// to stage, making a missing config file a soft condition.
func (o *Overrides) CanRunConfigless() bool {
	if o == nil {
		return false
	}
	return len(o.Include) > 0 || len(o.AddInclude) > 0
}

// boolValue unwraps an optional bool with a fallback.
func boolValue(p *bool, fallback bool) bool {
	if p != nil {
		return *p
	}
	return fallback
}

// rootRespectGitignore reads the root-level gitignore default, if any.
func rootRespectGitignore(root *types.RootConfig) *bool {
	if root == nil {
		return nil
	}
	return root.RespectGitignore
}
