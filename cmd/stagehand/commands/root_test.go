package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stagehand/pkg/config"
	"github.com/arthur-debert/stagehand/pkg/errors"
)

func TestNormalizePositionals(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		out         string
		wantInclude []string
		wantOut     string
	}{
		{
			name:        "single positional is an include",
			args:        []string{"src/**"},
			wantInclude: []string{"src/**"},
			wantOut:     "",
		},
		{
			name:        "last of several becomes out",
			args:        []string{"src/**", "assets/", "dist"},
			wantInclude: []string{"src/**", "assets/"},
			wantOut:     "dist",
		},
		{
			name:        "explicit out keeps all positionals as includes",
			args:        []string{"src/**", "assets/"},
			out:         "build",
			wantInclude: []string{"src/**", "assets/"},
			wantOut:     "build",
		},
		{
			name:        "no positionals is a no-op",
			args:        nil,
			wantInclude: nil,
			wantOut:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &config.Overrides{Out: tt.out}
			require.NoError(t, normalizePositionals(tt.args, o))
			assert.Equal(t, tt.wantInclude, o.Include)
			assert.Equal(t, tt.wantOut, o.Out)
		})
	}
}

func TestNormalizePositionalsRejectsMixWithIncludeFlag(t *testing.T) {
	o := &config.Overrides{Include: []string{"src/**"}}
	err := normalizePositionals([]string{"assets/"}, o)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArgParse))
	assert.Equal(t, 2, errors.ExitCode(err))
}

// flagCmd builds a command carrying only the watch flag, enough for
// overrides() to inspect Changed state.
func flagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	var w string
	cmd.Flags().StringVar(&w, "watch", "", "")
	cmd.Flags().Lookup("watch").NoOptDefVal = watchDefaultSentinel
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return cmd
}

func TestOverridesLogLevelShorthands(t *testing.T) {
	cmd := flagCmd(t)

	o, _, err := (&cliFlags{quiet: true}).overrides(cmd)
	require.NoError(t, err)
	assert.Equal(t, "warning", o.LogLevel)

	o, _, err = (&cliFlags{verbose: true}).overrides(cmd)
	require.NoError(t, err)
	assert.Equal(t, "debug", o.LogLevel)

	o, _, err = (&cliFlags{logLevel: "error"}).overrides(cmd)
	require.NoError(t, err)
	assert.Equal(t, "error", o.LogLevel)
}

func TestOverridesRejectsUnknownLogLevel(t *testing.T) {
	cmd := flagCmd(t)
	_, _, err := (&cliFlags{logLevel: "loud"}).overrides(cmd)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArgParse))
}

func TestOverridesBoolPairs(t *testing.T) {
	cmd := flagCmd(t)

	o, _, err := (&cliFlags{noGitignore: true}).overrides(cmd)
	require.NoError(t, err)
	require.NotNil(t, o.RespectGitignore)
	assert.False(t, *o.RespectGitignore)

	o, _, err = (&cliFlags{gitignore: true}).overrides(cmd)
	require.NoError(t, err)
	require.NotNil(t, o.RespectGitignore)
	assert.True(t, *o.RespectGitignore)

	o, _, err = (&cliFlags{noStrictConfig: true}).overrides(cmd)
	require.NoError(t, err)
	require.NotNil(t, o.StrictConfig)
	assert.False(t, *o.StrictConfig)
}

func TestOverridesWatchInterval(t *testing.T) {
	cmd := flagCmd(t, "--watch", "2.5")
	flags := &cliFlags{watch: "2.5"}
	o, enabled, err := flags.overrides(cmd)
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NotNil(t, o.Watch)
	assert.InDelta(t, 2.5, *o.Watch, 1e-9)
}

func TestOverridesWatchBareFlag(t *testing.T) {
	cmd := flagCmd(t, "--watch")
	flags := &cliFlags{watch: watchDefaultSentinel}
	o, enabled, err := flags.overrides(cmd)
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Nil(t, o.Watch)
}

func TestOverridesWatchRejectsBadInterval(t *testing.T) {
	for _, bad := range []string{"fast", "0", "-1"} {
		cmd := flagCmd(t, "--watch="+bad)
		_, _, err := (&cliFlags{watch: bad}).overrides(cmd)
		require.Error(t, err, "interval %q", bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrArgParse))
	}
}

func TestRootCmdFlagSurface(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{
		"config", "out", "include", "add-include", "exclude", "add-exclude",
		"watch", "log-level", "quiet", "verbose", "gitignore", "no-gitignore",
		"color", "no-color", "dry-run", "strict-config", "no-strict-config",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}
