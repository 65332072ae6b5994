package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stagehand/pkg/build"
	"github.com/arthur-debert/stagehand/pkg/config"
	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// newSelftestCmd returns a hidden command that exercises the copy pipeline
// end to end in a throwaway directory. Useful for sanity-checking an
// installed binary.
func newSelftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "selftest",
		Short:  "Run a quick end-to-end sanity check in a temporary directory",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelftest()
		},
	}
}

func runSelftest() error {
	logger := logging.GetLogger("selftest")

	dir, err := os.MkdirTemp("", "stagehand-selftest-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not create temp directory")
	}
	defer func() { _ = os.RemoveAll(dir) }()

	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not create source directory")
	}
	const payload = "hello from stagehand\n"
	if err := os.WriteFile(filepath.Join(srcDir, "hello.txt"), []byte(payload), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "could not write probe file")
	}

	o := &config.Overrides{Out: filepath.Join(dir, "out")}
	resolved := config.ResolveBuildConfig(types.BuildConfig{Include: []string{"src/"}}, o, dir, dir, nil)
	if err := build.RunBuild(resolved); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "selftest build failed")
	}

	got, err := os.ReadFile(filepath.Join(dir, "out", "hello.txt"))
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "selftest output missing")
	}
	if string(got) != payload {
		return errors.New(errors.ErrInternal, "selftest output content mismatch")
	}

	logger.Info().Msg("Selftest passed.")
	return nil
}
