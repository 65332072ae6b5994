package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stagehand/pkg/errors"
)

func TestLoadAndValidate_FullPipeline(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()
	writeFile(t, dir, ".stagehand.jsonc", `{
	  // staged artifacts
	  "log_level": "error",
	  "builds": [
	    {"include": ["src/**"], "out": "dist",},
	  ],
	}`)

	path, root, err := LoadAndValidate(nil, dir)

	require.NoError(t, err)
	require.NotNil(t, root)
	assert.NotEmpty(t, path)
	assert.Equal(t, "error", root.LogLevel)
	require.Len(t, root.Builds, 1)
	assert.Equal(t, []string{"src/**"}, root.Builds[0].Include)
}

func TestLoadAndValidate_NoConfigFound(t *testing.T) {
	path, root, err := LoadAndValidate(&Overrides{Include: []string{"src"}}, t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, root)
}

func TestLoadAndValidate_EmptyConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".stagehand.jsonc", "// nothing yet\n")

	path, root, err := LoadAndValidate(nil, dir)

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Nil(t, root)
}

func TestLoadAndValidate_InvalidConfigIsSilentError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".stagehand.json", `{"builds": [{"include": "src"}]}`)

	_, _, err := LoadAndValidate(nil, dir)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.True(t, errors.IsSilent(err))
}

func TestLoadAndValidate_LenientOverrideAccepts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".stagehand.json", `{"strictness": "maximal", "builds": [{"include": ["src"]}]}`)

	lenient := false
	_, root, err := LoadAndValidate(&Overrides{StrictConfig: &lenient}, dir)

	require.NoError(t, err)
	require.NotNil(t, root)
}
