// Package watch implements the polling rebuild loop: it snapshots the
// modification times of every included file, re-expands the include
// patterns each tick, and triggers a rebuild when files change, appear, or
// disappear. Files under any build's output directory are ignored so a
// rebuild never retriggers itself.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/stagehand/pkg/build"
	"github.com/arthur-debert/stagehand/pkg/logging"
	"github.com/arthur-debert/stagehand/pkg/types"
)

// Watch runs rebuild once, then polls until ctx is cancelled. The interval
// is the sleep between polls; 1s is the default balance between latency
// and load.
func Watch(ctx context.Context, builds []types.BuildConfigResolved, interval time.Duration, rebuild func()) {
	logger := logging.GetLogger("watch")
	logger.Info().Msgf("Watching for changes (interval=%.2fs)... Press Ctrl+C to stop.", interval.Seconds())

	outDirs := make([]string, 0, len(builds))
	for _, b := range builds {
		outDirs = append(outDirs, filepath.Join(b.Out.Root, b.Out.Path))
	}

	mtimes := snapshot(build.CollectIncludedFiles(builds))

	rebuild()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Watch stopped.")
			return
		case <-ticker.C:
		}

		// Re-expand every tick so new and removed files are tracked.
		files := build.CollectIncludedFiles(builds)
		current := make(map[string]bool, len(files))
		for _, f := range files {
			current[f] = true
		}

		changed := 0
		for _, f := range files {
			if underAny(f, outDirs) {
				continue
			}
			old, tracked := mtimes[f]
			info, err := os.Stat(f)
			if err != nil {
				if tracked {
					changed++
					delete(mtimes, f)
				}
				continue
			}
			if !tracked || info.ModTime().After(old) {
				changed++
				mtimes[f] = info.ModTime()
			}
		}
		// Files that vanished entirely no longer show up in the expansion.
		for f := range mtimes {
			if !current[f] {
				changed++
				delete(mtimes, f)
			}
		}

		if changed > 0 {
			logger.Info().Msgf("Detected %d modified file(s). Rebuilding...", changed)
			rebuild()
			mtimes = snapshot(files)
		}
	}
}

func snapshot(files []string) map[string]time.Time {
	mtimes := make(map[string]time.Time, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			mtimes[f] = info.ModTime()
		}
	}
	return mtimes
}

func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
