package exclusion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stagehand/pkg/types"
)

func TestIsExcludedRawBasicPatterns(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"extension match", "sample.py", []string{"*.py"}, true},
		{"no match", "sample.go", []string{"*.py"}, false},
		{"subdir pattern", "dir/sample.tmp", []string{"*.py", "dir/*.tmp", "ignore/*"}, true},
		{"question mark", "a.go", []string{"?.go"}, true},
		{"char class", "b.go", []string{"[ab].go"}, true},
		{"empty patterns", "anything.txt", nil, false},
		{"star stays in segment", "dir/deep/file.py", []string{"dir/*.py"}, false},
		{"double star recurses", "dir/deep/deeper/file.py", []string{"dir/**/*.py"}, true},
		{"double star any depth", "a/b/c/d.log", []string{"**/*.log"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExcludedRaw(tt.path, tt.patterns, root))
		})
	}
}

func TestIsExcludedRawOrderIndependent(t *testing.T) {
	root := t.TempDir()
	patterns := []string{"*.py", "dir/*.tmp", "ignore/*"}
	reversed := []string{"ignore/*", "dir/*.tmp", "*.py"}

	assert.True(t, IsExcludedRaw("dir/sample.tmp", patterns, root))
	assert.True(t, IsExcludedRaw("dir/sample.tmp", reversed, root))
}

func TestIsExcludedRawOutsideRoot(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()

	assert.NotPanics(t, func() {
		assert.False(t, IsExcludedRaw(filepath.Join(other, "file.py"), []string{"*.py"}, root))
	})
}

func TestIsExcludedRawDirectoryMarker(t *testing.T) {
	root := t.TempDir()

	assert.True(t, IsExcludedRaw("tmp/file.txt", []string{"tmp/"}, root))
	assert.True(t, IsExcludedRaw("tmp/deep/nested.txt", []string{"tmp/"}, root))
	assert.False(t, IsExcludedRaw("tmpfile.txt", []string{"tmp/"}, root))
}

func TestIsExcludedRawAbsolutePatternUnderRoot(t *testing.T) {
	root := t.TempDir()

	abs := filepath.Join(root, "build", "*.o")
	assert.True(t, IsExcludedRaw("build/main.o", []string{abs}, root))

	// Unrelated absolute patterns never match relative candidates.
	assert.False(t, IsExcludedRaw("build/main.o", []string{"/elsewhere/build/*.o"}, root))
}

func TestIsExcludedRawRootIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, IsExcludedRaw(file, nil, file))
	assert.True(t, IsExcludedRaw("target.txt", nil, file))
	assert.False(t, IsExcludedRaw(filepath.Join(dir, "other.txt"), nil, file))
}

func TestIsExcludedRawMissingRootStillMatches(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")

	assert.NotPanics(t, func() {
		assert.True(t, IsExcludedRaw("x.py", []string{"*.py"}, missing))
	})
}

func TestIsExcluded(t *testing.T) {
	root := t.TempDir()

	candidate := types.PathResolved{Path: "logs/app.log", Root: root, Origin: types.OriginConfig}
	excludes := []types.PathResolved{
		{Path: "*.tmp", Root: root, Origin: types.OriginConfig},
		{Path: "logs/*.log", Root: root, Origin: types.OriginGitignore},
	}

	assert.True(t, IsExcluded(candidate, excludes))
	assert.False(t, IsExcluded(types.PathResolved{Path: "logs/app.txt", Root: root}, excludes))
}

func TestExpandDirPatterns(t *testing.T) {
	got := ExpandDirPatterns([]string{"tmp/", "*.log"})
	assert.Equal(t, []string{"tmp/", "tmp", "**/tmp", "**/tmp/**", "*.log"}, got)
}
