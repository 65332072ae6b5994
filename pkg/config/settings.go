package config

import (
	"os"
	"strconv"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/stagehand/pkg/logging"
)

// DetermineLogLevel resolves the effective log level by layering every
// source in increasing precedence: default, root config, build config,
// environment (LOG_LEVEL, then the prefixed form), CLI flag.
func DetermineLogLevel(o *Overrides, rootLevel, buildLevel string) string {
	k := koanf.New(".")

	_ = k.Load(confmap.Provider(map[string]any{"log_level": DefaultLogLevel}, "."), nil)
	if rootLevel != "" {
		_ = k.Load(confmap.Provider(map[string]any{"log_level": rootLevel}, "."), nil)
	}
	if buildLevel != "" {
		_ = k.Load(confmap.Provider(map[string]any{"log_level": buildLevel}, "."), nil)
	}
	// An empty environment value counts as unset.
	if os.Getenv("LOG_LEVEL") != "" {
		_ = k.Load(env.Provider("LOG_LEVEL", ".", func(s string) string {
			if s == "LOG_LEVEL" {
				return "log_level"
			}
			return ""
		}), nil)
	}
	if os.Getenv(EnvLogLevel) != "" {
		_ = k.Load(env.Provider(EnvLogLevel, ".", func(s string) string {
			if s == EnvLogLevel {
				return "log_level"
			}
			return ""
		}), nil)
	}
	if o != nil && o.LogLevel != "" {
		_ = k.Load(confmap.Provider(map[string]any{"log_level": o.LogLevel}, "."), nil)
	}

	return k.String("log_level")
}

// DetermineWatchInterval resolves the polling interval in seconds: CLI
// flag, then environment, then root config, then the default. An
// unparseable environment value warns and falls back instead of failing.
func DetermineWatchInterval(o *Overrides, rootInterval *float64) float64 {
	k := koanf.New(".")

	_ = k.Load(confmap.Provider(map[string]any{"watch_interval": DefaultWatchInterval}, "."), nil)
	if rootInterval != nil {
		_ = k.Load(confmap.Provider(map[string]any{"watch_interval": *rootInterval}, "."), nil)
	}
	if raw, ok := os.LookupEnv(EnvWatchInterval); ok && raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			_ = k.Load(confmap.Provider(map[string]any{"watch_interval": parsed}, "."), nil)
		} else {
			logger := logging.GetLogger("config")
			logger.Warn().
				Str("value", raw).
				Msgf("Invalid %s=%q, using default.", EnvWatchInterval, raw)
			_ = k.Load(confmap.Provider(map[string]any{"watch_interval": DefaultWatchInterval}, "."), nil)
		}
	}
	if o != nil && o.Watch != nil {
		_ = k.Load(confmap.Provider(map[string]any{"watch_interval": *o.Watch}, "."), nil)
	}

	return k.Float64("watch_interval")
}
