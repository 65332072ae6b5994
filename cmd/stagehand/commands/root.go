package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stagehand/internal/version"
	"github.com/arthur-debert/stagehand/pkg/config"
	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
)

// cliFlags holds every flag value before it is folded into config.Overrides.
type cliFlags struct {
	configPath string
	include    []string
	exclude    []string
	addInclude []string
	addExclude []string
	out        string

	logLevel string
	quiet    bool
	verbose  bool

	gitignore   bool
	noGitignore bool

	color   bool
	noColor bool

	strictConfig   bool
	noStrictConfig bool

	dryRun bool
	watch  string
}

// watchDefaultSentinel marks `--watch` given without a value: the interval
// then comes from config, environment, or the default.
const watchDefaultSentinel = "config"

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	flags := &cliFlags{}

	rootCmd := &cobra.Command{
		Use:   "stagehand [INCLUDE...] [OUT]",
		Short: "Stage files into an output directory from declarative include/exclude patterns",
		Long: `stagehand copies files matching include/exclude glob patterns from a
source tree into one or more output directories, optionally watching for
changes and rebuilding.

Configuration is discovered in the working directory
(.stagehand.jsonc/.json/.toml/.yaml/.yml) or given with --config.
Positional arguments are shorthand: INCLUDE... patterns, with the last
argument becoming the output directory when two or more are given and
--out is absent.`,
		Version: fmt.Sprintf("%s (%s)", version.Version, version.Commit),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, flags)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "Path to build config file.")
	f.StringArrayVar(&flags.include, "include", nil, "Override include patterns. Repeatable.")
	f.StringArrayVar(&flags.exclude, "exclude", nil, "Override exclude patterns. Repeatable.")
	f.StringArrayVar(&flags.addInclude, "add-include", nil, "Additional include paths (relative to cwd). Extends config includes.")
	f.StringArrayVar(&flags.addExclude, "add-exclude", nil, "Additional exclude patterns (relative to cwd). Extends config excludes.")
	f.StringVarP(&flags.out, "out", "o", "", "Override output directory.")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Simulate build actions without copying or deleting files.")

	f.StringVar(&flags.watch, "watch", "", "Rebuild automatically on changes. Use --watch=SECONDS to set the poll interval.")
	watchFlag := rootCmd.Flags().Lookup("watch")
	watchFlag.NoOptDefVal = watchDefaultSentinel

	f.BoolVar(&flags.gitignore, "gitignore", false, "Respect .gitignore when selecting files (default).")
	f.BoolVar(&flags.noGitignore, "no-gitignore", false, "Ignore .gitignore and include all files.")

	f.BoolVar(&flags.color, "color", false, "Force-enable ANSI color output (overrides auto-detect).")
	f.BoolVar(&flags.noColor, "no-color", false, "Disable ANSI color output.")

	f.BoolVar(&flags.strictConfig, "strict-config", false, "Treat unknown config keys as errors (default).")
	f.BoolVar(&flags.noStrictConfig, "no-strict-config", false, "Downgrade unknown config keys to warnings.")

	f.StringVar(&flags.logLevel, "log-level", "", "Set log verbosity level ("+strings.Join(logging.LevelNames, ", ")+").")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Suppress non-critical output (same as --log-level warning).")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose output (same as --log-level debug).")

	rootCmd.MarkFlagsMutuallyExclusive("gitignore", "no-gitignore")
	rootCmd.MarkFlagsMutuallyExclusive("color", "no-color")
	rootCmd.MarkFlagsMutuallyExclusive("strict-config", "no-strict-config")
	rootCmd.MarkFlagsMutuallyExclusive("log-level", "quiet", "verbose")

	rootCmd.SetVersionTemplate("stagehand {{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrArgParse, "invalid arguments")
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelftestCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("stagehand %s (%s)\n", version.Version, version.Commit)
		},
	}
}

// overrides folds validated flag values into the config override set. It
// reports argument errors for values cobra cannot check itself.
func (c *cliFlags) overrides(cmd *cobra.Command) (*config.Overrides, bool, error) {
	o := &config.Overrides{
		ConfigPath: c.configPath,
		Include:    c.include,
		Exclude:    c.exclude,
		AddInclude: c.addInclude,
		AddExclude: c.addExclude,
		Out:        c.out,
		DryRun:     c.dryRun,
	}

	switch {
	case c.logLevel != "":
		if _, err := logging.ParseLevel(c.logLevel); err != nil {
			return nil, false, errors.Wrap(err, errors.ErrArgParse, "invalid --log-level")
		}
		o.LogLevel = c.logLevel
	case c.quiet:
		o.LogLevel = "warning"
	case c.verbose:
		o.LogLevel = "debug"
	}

	if c.gitignore {
		v := true
		o.RespectGitignore = &v
	}
	if c.noGitignore {
		v := false
		o.RespectGitignore = &v
	}

	if c.strictConfig {
		v := true
		o.StrictConfig = &v
	}
	if c.noStrictConfig {
		v := false
		o.StrictConfig = &v
	}

	watchEnabled := cmd.Flags().Changed("watch")
	if watchEnabled && c.watch != watchDefaultSentinel {
		seconds, err := strconv.ParseFloat(c.watch, 64)
		if err != nil || seconds <= 0 {
			return nil, false, errors.Newf(errors.ErrArgParse, "invalid --watch interval: %q", c.watch)
		}
		o.Watch = &seconds
	}

	return o, watchEnabled, nil
}

// useColor resolves the color policy: explicit flags beat auto-detection.
func (c *cliFlags) useColor() bool {
	switch {
	case c.color:
		return true
	case c.noColor:
		return false
	}
	return logging.ShouldUseColor()
}
