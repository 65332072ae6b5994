package schema

import "fmt"

// Keys that people reasonably try in config files but that only exist as
// CLI flags or at specific config levels. They are reported once per run,
// across all the places they appear, and then skipped.
var (
	dryRunKeys   = []string{"dry-run", "dry_run", "dryrun", "no-op", "no_op", "noop"}
	rootOnlyKeys = []string{"watch_interval"}
)

const (
	dryRunTemplate = "Ignored config key(s) {keys} {ctx}: " +
		"this tool has no config option for it. Use the CLI flag '--dry-run' instead."
	rootOnlyTemplate = "Ignored {keys} {ctx}: these options only apply at the root level."
)

// DefaultStrict is the strictness applied when neither the caller nor the
// configuration says otherwise.
const DefaultStrict = true

// ValidateConfig checks a parsed configuration tree against the declared
// shapes and returns every finding at once. strict, when non-nil, overrides
// both the default and any strict_config values in the file.
func ValidateConfig(parsed map[string]any, strict *bool) *ValidationSummary {
	rootStrict := resolveStrict(parsed, strict)
	summary := NewSummary(rootStrict)
	agg := newAggregator()

	validateRoot(parsed, rootStrict, summary, agg)
	validateBuilds(parsed, strict, rootStrict, summary, agg)

	agg.flush(summary)
	return summary
}

// resolveStrict picks the effective strictness for one level: explicit
// override, then the level's own strict_config, then the fallback.
func resolveStrict(cfg map[string]any, override *bool) bool {
	if override != nil {
		return *override
	}
	if v, ok := cfg["strict_config"].(bool); ok {
		return v
	}
	return DefaultStrict
}

func validateRoot(parsed map[string]any, strict bool, summary *ValidationSummary, agg *aggregator) {
	context := "in top-level configuration"
	prewarn := warnKeysOnce(agg, "dry-run", dryRunTemplate, context, dryRunKeys, parsed, strict)
	checkConformance(parsed, RootDefinition(), context, strict, summary, prewarn, map[string]bool{"builds": true})
}

func validateBuilds(parsed map[string]any, override *bool, rootStrict bool, summary *ValidationSummary, agg *aggregator) {
	raw, present := parsed["builds"]
	if !present || raw == nil {
		summary.collect("No `builds` key defined; nothing to stage.", rootStrict, false)
		return
	}

	builds, ok := raw.([]any)
	if !ok {
		// Without a list there is nothing meaningful to walk.
		summary.collect(fmt.Sprintf("`builds` must be a list of builds, got %s.", typeName(raw)), rootStrict, true)
		return
	}
	if len(builds) == 0 {
		summary.collect("No builds defined; nothing to stage.", rootStrict, false)
		return
	}

	def := BuildDefinition()
	for i, entry := range builds {
		context := fmt.Sprintf("in build #%d", i+1)
		build, ok := entry.(map[string]any)
		if !ok {
			summary.collect(fmt.Sprintf("Build #%d must be an object with named keys, got %s.", i+1, typeName(entry)), rootStrict, true)
			continue
		}

		// Each build may tighten or loosen strictness for itself, unless
		// the caller forced a mode for the whole run.
		buildStrict := rootStrict
		if override == nil {
			if v, ok := build["strict_config"].(bool); ok {
				buildStrict = v
			}
		}

		prewarn := warnKeysOnce(agg, "dry-run", dryRunTemplate, context, dryRunKeys, build, buildStrict)
		for k, v := range warnKeysOnce(agg, "root-only", rootOnlyTemplate, context, rootOnlyKeys, build, buildStrict) {
			prewarn[k] = v
		}

		checkConformance(build, def, context, buildStrict, summary, prewarn, nil)
	}
}
