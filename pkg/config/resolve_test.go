package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stagehand/pkg/types"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func TestResolveBuildConfig_IncludesFromConfig(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()
	mkdirAll(t, filepath.Join(configDir, "src"))

	build := types.BuildConfig{Include: []string{"src/**"}}
	resolved := ResolveBuildConfig(build, nil, configDir, cwd, nil)

	require.Len(t, resolved.Include, 1)
	assert.Equal(t, "src/**", resolved.Include[0].Path)
	assert.Equal(t, configDir, resolved.Include[0].Root)
	assert.Equal(t, types.OriginConfig, resolved.Include[0].Origin)
}

func TestResolveBuildConfig_CLIIncludeReplacesConfig(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	build := types.BuildConfig{Include: []string{"src/**"}}
	o := &Overrides{Include: []string{"cli/**"}}
	resolved := ResolveBuildConfig(build, o, configDir, cwd, nil)

	require.Len(t, resolved.Include, 1)
	assert.Equal(t, "cli/**", resolved.Include[0].Path)
	assert.Equal(t, cwd, resolved.Include[0].Root)
	assert.Equal(t, types.OriginCLI, resolved.Include[0].Origin)
}

func TestResolveBuildConfig_AddIncludeExtends(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	build := types.BuildConfig{Include: []string{"src/**"}}
	o := &Overrides{AddInclude: []string{"extra/**"}}
	resolved := ResolveBuildConfig(build, o, configDir, cwd, nil)

	require.Len(t, resolved.Include, 2)
	assert.Equal(t, "src/**", resolved.Include[0].Path)
	assert.Equal(t, types.OriginConfig, resolved.Include[0].Origin)
	assert.Equal(t, "extra/**", resolved.Include[1].Path)
	assert.Equal(t, types.OriginCLI, resolved.Include[1].Origin)
}

func TestResolveBuildConfig_DedupKeepsFirst(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	build := types.BuildConfig{Include: []string{"src/**", "src/**"}}
	resolved := ResolveBuildConfig(build, nil, configDir, cwd, nil)

	assert.Len(t, resolved.Include, 1)
}

func TestResolveBuildConfig_SamePatternDifferentRootsBothKept(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	build := types.BuildConfig{Include: []string{"src/**"}}
	o := &Overrides{AddInclude: []string{"src/**"}}
	resolved := ResolveBuildConfig(build, o, configDir, cwd, nil)

	// Identical patterns anchored at different roots are distinct entries.
	require.Len(t, resolved.Include, 2)
	assert.NotEqual(t, resolved.Include[0].Root, resolved.Include[1].Root)
}

func TestResolveBuildConfig_AbsoluteIncludeForms(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()
	target := filepath.Join(t.TempDir(), "assets")
	mkdirAll(t, target)

	build := types.BuildConfig{Include: []string{
		target + "/**",
		target + "/",
		target,
	}}
	resolved := ResolveBuildConfig(build, nil, configDir, cwd, nil)

	require.Len(t, resolved.Include, 2) // "/**" and "/" collapse to the same entry
	assert.Equal(t, target, resolved.Include[0].Root)
	assert.Equal(t, "**", resolved.Include[0].Path)
	assert.Equal(t, target, resolved.Include[1].Root)
	assert.Equal(t, ".", resolved.Include[1].Path)
}

func TestResolveBuildConfig_ExcludesStayLiteral(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	build := types.BuildConfig{Exclude: []string{"*.tmp", "node_modules/"}}
	falseVal := false
	o := &Overrides{RespectGitignore: &falseVal}
	resolved := ResolveBuildConfig(build, o, configDir, cwd, nil)

	require.Len(t, resolved.Exclude, 2)
	assert.Equal(t, "*.tmp", resolved.Exclude[0].Path)
	assert.Equal(t, configDir, resolved.Exclude[0].Root)
	assert.Equal(t, "node_modules/", resolved.Exclude[1].Path)
}

func TestResolveBuildConfig_GitignoreMerge(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()
	writeFile(t, configDir, ".gitignore", "# build output\n\n*.log\ntmp/\n")

	t.Run("enabled by default", func(t *testing.T) {
		resolved := ResolveBuildConfig(types.BuildConfig{}, nil, configDir, cwd, nil)

		require.Len(t, resolved.Exclude, 2)
		assert.Equal(t, "*.log", resolved.Exclude[0].Path)
		assert.Equal(t, types.OriginGitignore, resolved.Exclude[0].Origin)
		assert.Equal(t, "tmp/", resolved.Exclude[1].Path)
		assert.True(t, resolved.RespectGitignore)
	})

	t.Run("disabled by build config", func(t *testing.T) {
		falseVal := false
		build := types.BuildConfig{RespectGitignore: &falseVal}
		resolved := ResolveBuildConfig(build, nil, configDir, cwd, nil)

		assert.Empty(t, resolved.Exclude)
		assert.False(t, resolved.RespectGitignore)
	})

	t.Run("CLI wins over config", func(t *testing.T) {
		trueVal := true
		falseVal := false
		build := types.BuildConfig{RespectGitignore: &falseVal}
		o := &Overrides{RespectGitignore: &trueVal}
		resolved := ResolveBuildConfig(build, o, configDir, cwd, nil)

		assert.Len(t, resolved.Exclude, 2)
	})

	t.Run("gitignore duplicate of config exclude is dropped", func(t *testing.T) {
		build := types.BuildConfig{Exclude: []string{"*.log"}}
		resolved := ResolveBuildConfig(build, nil, configDir, cwd, nil)

		require.Len(t, resolved.Exclude, 2)
		assert.Equal(t, types.OriginConfig, resolved.Exclude[0].Origin)
	})
}

func TestResolveBuildConfig_OutDir(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	t.Run("default is dist under cwd", func(t *testing.T) {
		resolved := ResolveBuildConfig(types.BuildConfig{}, nil, configDir, cwd, nil)

		assert.Equal(t, "dist", resolved.Out.Path)
		assert.Equal(t, cwd, resolved.Out.Root)
		assert.Equal(t, types.OriginDefault, resolved.Out.Origin)
	})

	t.Run("config out is anchored to the config dir", func(t *testing.T) {
		resolved := ResolveBuildConfig(types.BuildConfig{Out: "build"}, nil, configDir, cwd, nil)

		assert.Equal(t, "build", resolved.Out.Path)
		assert.Equal(t, configDir, resolved.Out.Root)
		assert.Equal(t, types.OriginConfig, resolved.Out.Origin)
	})

	t.Run("CLI out wins and anchors to cwd", func(t *testing.T) {
		o := &Overrides{Out: "staged"}
		resolved := ResolveBuildConfig(types.BuildConfig{Out: "build"}, o, configDir, cwd, nil)

		assert.Equal(t, "staged", resolved.Out.Path)
		assert.Equal(t, cwd, resolved.Out.Root)
		assert.Equal(t, types.OriginCLI, resolved.Out.Origin)
	})
}

func TestResolveConfig(t *testing.T) {
	configDir := t.TempDir()
	cwd := t.TempDir()

	interval := 2.5
	strict := true
	root := &types.RootConfig{
		Builds:        []types.BuildConfig{{Include: []string{"a"}}, {Include: []string{"b"}}},
		LogLevel:      "warning",
		WatchInterval: &interval,
		StrictConfig:  &strict,
	}

	resolved := ResolveConfig(root, nil, configDir, cwd)

	assert.Len(t, resolved.Builds, 2)
	assert.Equal(t, "warning", resolved.LogLevel)
	assert.True(t, resolved.StrictConfig)
	assert.Equal(t, 2500*time.Millisecond, resolved.WatchInterval)
}

func TestResolveConfig_NilRootRunsOneEmptyBuild(t *testing.T) {
	cwd := t.TempDir()

	o := &Overrides{Include: []string{"src/**"}}
	resolved := ResolveConfig(nil, o, cwd, cwd)

	require.Len(t, resolved.Builds, 1)
	require.Len(t, resolved.Builds[0].Include, 1)
	assert.Equal(t, "src/**", resolved.Builds[0].Include[0].Path)
	assert.Equal(t, time.Second, resolved.WatchInterval)
	assert.False(t, resolved.StrictConfig)
}
