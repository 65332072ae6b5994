package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
)

// candidateNames are the discovery filenames, in priority order.
var candidateNames = []string{
	"." + ProgramName + ".jsonc",
	"." + ProgramName + ".json",
	"." + ProgramName + ".toml",
	"." + ProgramName + ".yaml",
	"." + ProgramName + ".yml",
}

// FindConfig locates the configuration file.
//
// An explicit path must exist and be a regular file; a missing explicit
// path is a hard failure. Without an explicit path the working directory is
// searched for the candidate names, warning when more than one matches.
// Returns "" with a nil error when nothing was found.
func FindConfig(explicit, cwd string) (string, error) {
	logger := logging.GetLogger("config")

	if explicit != "" {
		path, err := expandUser(explicit)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigNotFound, "cannot resolve config path %s", explicit)
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", errors.Newf(errors.ErrConfigNotFound, "specified config file not found: %s", path)
		}
		if info.IsDir() {
			return "", errors.Newf(errors.ErrInvalidInput, "specified config path is a directory, not a file: %s", path)
		}
		return path, nil
	}

	var found []string
	for _, name := range candidateNames {
		candidate := filepath.Join(cwd, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, candidate)
		}
	}
	if len(found) == 0 {
		return "", nil
	}
	if len(found) > 1 {
		names := make([]string, len(found))
		for i, p := range found {
			names[i] = filepath.Base(p)
		}
		logger.Warn().
			Strs("candidates", names).
			Msgf("Multiple config files detected (%s); using %s.", strings.Join(names, ", "), names[0])
	}
	return found[0], nil
}

// expandUser resolves a leading ~ and makes the path absolute.
func expandUser(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
