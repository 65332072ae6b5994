package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/stagehand/cmd/stagehand/commands"
	"github.com/arthur-debert/stagehand/pkg/errors"
	"github.com/arthur-debert/stagehand/pkg/logging"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		report(err)
		os.Exit(errors.ExitCode(err))
	}
}

// report prints a terminal error unless it was already shown in full.
// Unexpected internal failures ask for a bug report instead of panicking
// at the user; a broken logger falls back to the emergency writer.
func report(err error) {
	if errors.IsSilent(err) {
		return
	}

	defer func() {
		if recover() != nil {
			logging.SafeLog(fmt.Sprintf("[FATAL] Logging failed while reporting: %v", err))
		}
	}()

	logger := logging.GetLogger("main")
	switch errors.GetErrorCode(err) {
	case errors.ErrInternal, errors.ErrUnknown:
		logger.WithLevel(logging.CriticalLevel).
			Msgf("Unexpected internal error: %v\nPlease report this at https://github.com/arthur-debert/stagehand/issues", err)
	default:
		logger.Error().Msg(err.Error())
	}
}
