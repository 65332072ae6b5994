package config

import (
	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/schema"
)

// ParseConfig normalizes any accepted config shape into the canonical
// {"builds": [...]} form without touching the filesystem.
//
// Accepted forms:
//   - nil / [] / {}              empty config, returns nil
//   - ["src/**", "docs/**"]      single build's include list
//   - [{...}, {...}]             multi-build shorthand
//   - {"builds": [...]}          canonical form
//   - {"build": {...}}           single build with root settings
//   - {...}                      flat single build, shared keys hoisted
//
// Unknown keys are preserved for the validation phase.
func ParseConfig(raw any) (map[string]any, error) {
	logger := logging.GetLogger("config")

	if isEmptyConfig(raw) {
		return nil, nil
	}

	if list, ok := raw.([]any); ok {
		if strs, ok := asStringList(list); ok {
			return map[string]any{
				"builds": []any{map[string]any{"include": anyList(strs)}},
			}, nil
		}
		if dicts, ok := asDictList(list); ok {
			return parseBuildList(dicts), nil
		}
		return nil, errors.New(errors.ErrConfigParse,
			"invalid mixed-type list: all elements must be strings or all must be objects")
	}

	cfg, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.ErrConfigParse,
			"invalid top-level value: %T (expected object, list of objects, or list of strings)", raw)
	}

	buildsVal, hasBuilds := cfg["builds"]
	buildVal := cfg["build"]

	// "builds" as a list is already canonical; "build" as a list is a
	// spelling slip worth accepting.
	if _, ok := buildsVal.([]any); ok {
		return copyMap(cfg), nil
	}
	if list, ok := buildVal.([]any); ok && !hasBuilds {
		logger.Warn().Msg("Config key 'build' was a list; treating as 'builds'.")
		root := copyMap(cfg)
		root["builds"] = list
		delete(root, "build")
		return root, nil
	}

	// A single build object under either key.
	if buildDict, ok := buildsVal.(map[string]any); ok {
		logger.Warn().Msg("Config key 'builds' was an object; treating as a single build.")
		root := copyMap(cfg)
		root["builds"] = []any{buildDict}
		return root, nil
	}
	if buildDict, ok := buildVal.(map[string]any); ok {
		root := copyMap(cfg)
		root["builds"] = []any{copyMap(buildDict)}
		delete(root, "build")
		return root, nil
	}

	return parseFlatBuild(cfg), nil
}

// parseBuildList normalizes a bare list of build objects, lifting
// watch_interval from the first build that declares it and stripping it
// from all builds to avoid ambiguity.
func parseBuildList(dicts []map[string]any) map[string]any {
	builds := make([]any, len(dicts))
	var firstWatch any
	sawWatch := false
	for i, b := range dicts {
		copied := copyMap(b)
		if v, ok := copied["watch_interval"]; ok && !sawWatch {
			firstWatch, sawWatch = v, true
		}
		builds[i] = copied
	}

	root := map[string]any{"builds": builds}
	if sawWatch {
		root["watch_interval"] = firstWatch
		for _, b := range builds {
			delete(b.(map[string]any), "watch_interval")
		}
	}
	return root
}

// parseFlatBuild treats the whole object as one build, moving only the
// keys shared between root and build config up to the root. Build-only and
// unknown keys stay on the build entry.
func parseFlatBuild(cfg map[string]any) map[string]any {
	shared := sharedRootBuildKeys()

	build := copyMap(cfg)
	root := make(map[string]any)
	for key := range shared {
		if v, ok := build[key]; ok {
			root[key] = v
			delete(build, key)
		}
	}
	root["builds"] = []any{build}
	return root
}

// sharedRootBuildKeys derives the hoistable keys from the declared schema
// shapes instead of hard-coding the list.
func sharedRootBuildKeys() map[string]bool {
	shared := make(map[string]bool)
	buildDef := schema.BuildDefinition()
	for key := range schema.RootDefinition() {
		if _, ok := buildDef[key]; ok {
			shared[key] = true
		}
	}
	return shared
}

func isEmptyConfig(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func asStringList(list []any) ([]string, bool) {
	strs := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		strs[i] = s
	}
	return strs, true
}

func asDictList(list []any) ([]map[string]any, bool) {
	dicts := make([]map[string]any, len(list))
	for i, item := range list {
		d, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		dicts[i] = d
	}
	return dicts, true
}

func anyList(strs []string) []any {
	out := make([]any, len(strs))
	for i, s := range strs {
		out[i] = s
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
