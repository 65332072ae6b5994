package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/arthur-debert/stagehand/pkg/errors"
)

// LoadRawConfig reads a config file into a loosely-typed tree. The result
// is a map[string]any, a []any, or nil for an intentionally empty config.
// Shape normalization and validation happen later; this stage only cares
// about syntax.
func LoadRawConfig(path string) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", filepath.Base(path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		raw, err := parseJSONC(content)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "error while loading configuration file '%s'", filepath.Base(path))
		}
		return raw, nil

	case ".toml":
		var data map[string]any
		if err := toml.Unmarshal(content, &data); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "error while loading configuration file '%s'", filepath.Base(path))
		}
		if len(data) == 0 {
			return nil, nil
		}
		return normalizeTree(data), nil

	case ".yaml", ".yml":
		var data any
		if err := yaml.Unmarshal(content, &data); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "error while loading configuration file '%s'", filepath.Base(path))
		}
		switch v := data.(type) {
		case map[string]any, []any, nil:
			return v, nil
		}
		return nil, errors.Newf(errors.ErrConfigParse, "invalid config root in %s: expected object or list", filepath.Base(path))

	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported config format: %s", filepath.Base(path))
	}
}

// normalizeTree rewrites decoder-specific container types into the plain
// map[string]any / []any shapes the rest of the pipeline works with. TOML
// arrays of tables in particular may decode as []map[string]any.
func normalizeTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeTree(val)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = normalizeTree(m)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeTree(val)
		}
		return t
	}
	return v
}
