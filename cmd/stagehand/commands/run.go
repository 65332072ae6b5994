package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stagehand/pkg/build"
	"github.com/arthur-debert/stagehand/pkg/config"
	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/watch"
)

// run is the root command body: fold flags into overrides, load and resolve
// the configuration, then either build once or enter watch mode.
func run(cmd *cobra.Command, args []string, flags *cliFlags) error {
	o, watchEnabled, err := flags.overrides(cmd)
	if err != nil {
		return err
	}
	if err := normalizePositionals(args, o); err != nil {
		return err
	}

	logging.Default.Setup(config.DetermineLogLevel(o, "", ""), flags.useColor())
	logger := logging.GetLogger("cli")

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not determine working directory")
	}

	configPath, rootCfg, err := config.LoadAndValidate(o, cwd)
	if err != nil {
		return err
	}
	if rootCfg == nil && !o.CanRunConfigless() {
		// LoadAndValidate already reported the missing config.
		return errors.New(errors.ErrConfigNotFound,
			"no build config found and no include patterns provided").AsSilent()
	}
	if rootCfg == nil {
		logger.Info().Msg("No config file, running from command-line arguments only.")
	}

	configDir := cwd
	if configPath != "" {
		configDir = filepath.Dir(configPath)
	}

	resolved := config.ResolveConfig(rootCfg, o, configDir, cwd)

	if o.DryRun {
		logger.Info().Msg("Dry run: no files will be copied or deleted.")
	}
	for i, b := range resolved.Builds {
		if len(b.Include) == 0 {
			logger.Warn().Msgf("Build #%d has no include patterns, nothing to copy.", i+1)
			continue
		}
		logger.Debug().Msgf("Build #%d: %d include pattern(s) into %s", i+1, len(b.Include), b.Out.Path)
	}

	if watchEnabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		watch.Watch(ctx, resolved.Builds, resolved.WatchInterval, func() {
			if buildErr := build.RunAllBuilds(resolved.Builds, o.DryRun); buildErr != nil {
				logger.Error().Err(buildErr).Msg("Build failed")
			}
		})
		return nil
	}
	return build.RunAllBuilds(resolved.Builds, o.DryRun)
}

// normalizePositionals maps bare arguments onto include patterns, with the
// last argument becoming the output directory when two or more are given
// and --out was not. Mixing positionals with --include is ambiguous and
// rejected.
func normalizePositionals(args []string, o *config.Overrides) error {
	if len(args) == 0 {
		return nil
	}
	if len(o.Include) > 0 {
		return errors.New(errors.ErrArgParse,
			"cannot mix positional include patterns with --include, use one or the other")
	}
	includes := args
	if o.Out == "" && len(args) >= 2 {
		o.Out = args[len(args)-1]
		includes = args[:len(args)-1]
	}
	o.Include = append([]string(nil), includes...)
	return nil
}
