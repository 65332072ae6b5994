package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/schema"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// LoadAndValidate finds, loads, parses, and validates the configuration.
//
// The effective log level is resolved as early as possible so everything
// after discovery logs at the right level, including a peek at a raw
// root-level log_level before the config is even parsed.
//
// Returns ("", nil, nil) when no config file was found, or when the file
// is intentionally empty. A config that fails validation returns a silent
// error: the validation summary has already been printed in full.
func LoadAndValidate(o *Overrides, cwd string) (string, *types.RootConfig, error) {
	logger := logging.GetLogger("config")
	logging.Default.SetLevel(DetermineLogLevel(o, "", ""))

	explicit := ""
	if o != nil {
		explicit = o.ConfigPath
	}
	configPath, err := FindConfig(explicit, cwd)
	if err != nil {
		return "", nil, err
	}
	if configPath == "" {
		// Without a config, CLI includes are the only way to proceed.
		if o.CanRunConfigless() {
			logger.Warn().Msgf("No config file found in %s", cwd)
		} else {
			logger.Error().Msgf("No config file found in %s", cwd)
		}
		return "", nil, nil
	}

	raw, err := LoadRawConfig(configPath)
	if err != nil {
		return "", nil, err
	}
	if raw == nil {
		return "", nil, nil
	}

	// Early peek for a declared log_level: flat single-build and root
	// shapes only, since lists carry no root settings.
	if dict, ok := raw.(map[string]any); ok {
		if lvl, ok := dict["log_level"].(string); ok && lvl != "" {
			logging.Default.SetLevel(DetermineLogLevel(o, lvl, ""))
		}
	}

	parsed, err := ParseConfig(raw)
	if err != nil {
		return "", nil, errors.Wrapf(err, errors.ErrConfigParse, "could not parse config %s", filepath.Base(configPath))
	}
	if parsed == nil {
		return "", nil, nil
	}

	var strict *bool
	if o != nil {
		strict = o.StrictConfig
	}
	summary := schema.ValidateConfig(parsed, strict)
	reportValidation(summary, configPath)
	if !summary.OK() {
		return "", nil, errors.Newf(errors.ErrConfigValid,
			"configuration file %s contains validation errors", filepath.Base(configPath)).AsSilent()
	}

	root, err := DecodeRoot(parsed)
	if err != nil {
		return "", nil, err
	}
	return configPath, root, nil
}

// reportValidation prints the validation outcome: one header line with
// counts, then each finding bucket in full.
func reportValidation(summary *schema.ValidationSummary, configPath string) {
	logger := logging.GetLogger("config")
	name := filepath.Base(configPath)

	mode := "lenient mode"
	if summary.Strict {
		mode = "strict mode"
	}

	var counts []string
	if n := len(summary.Errors); n > 0 {
		counts = append(counts, fmt.Sprintf("%d error%s", n, pluralS(n)))
	}
	if n := len(summary.StrictWarnings); n > 0 {
		counts = append(counts, fmt.Sprintf("%d strict warning%s", n, pluralS(n)))
	}
	if n := len(summary.Warnings); n > 0 {
		counts = append(counts, fmt.Sprintf("%d normal warning%s", n, pluralS(n)))
	}
	countsMsg := ""
	if len(counts) > 0 {
		countsMsg = fmt.Sprintf("\nFound %s.", strings.Join(counts, ", "))
	}

	switch {
	case !summary.OK():
		logger.Error().Msgf("Failed to validate configuration file %s (%s).%s", name, mode, countsMsg)
	case len(counts) > 0:
		logger.Warn().Msgf("Validated configuration file %s (%s) with warnings.%s", name, mode, countsMsg)
	default:
		logger.Debug().Msgf("Validated %s (%s) successfully.", name, mode)
	}

	if len(summary.Errors) > 0 {
		logger.Error().Msgf("\nErrors:\n  - %s", strings.Join(summary.Errors, "\n  - "))
	}
	if len(summary.StrictWarnings) > 0 {
		logger.Error().Msgf("\nStrict warnings (treated as errors):\n  - %s", strings.Join(summary.StrictWarnings, "\n  - "))
	}
	if len(summary.Warnings) > 0 {
		logger.Warn().Msgf("\nWarnings (non-fatal):\n  - %s", strings.Join(summary.Warnings, "\n  - "))
	}
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
