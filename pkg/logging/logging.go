// Package logging configures zerolog for stagehand and owns the runtime
// logging context: the current named level and the color flag. Level changes
// go through the Runtime so per-build overrides can be scoped with
// PushLevel/restore instead of mutating ambient state.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelNames lists the accepted log level names, least to most severe.
// "silent" disables all output.
var LevelNames = []string{"trace", "debug", "info", "warning", "error", "critical", "silent"}

// CriticalLevel is the zerolog level behind the "critical" name. Writing
// through WithLevel(CriticalLevel) logs at that severity without the
// process exit zerolog's Fatal() would perform.
const CriticalLevel = zerolog.FatalLevel

var levelMap = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"critical": zerolog.FatalLevel,
	"silent":   zerolog.Disabled,
}

// ParseLevel maps a named level to its zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	if lvl, ok := levelMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl, nil
	}
	return zerolog.InfoLevel, fmt.Errorf("unknown log level: %q", name)
}

// Runtime holds the mutable logging state. All mutation is funneled through
// its methods; the zero value is a usable runtime at level "info".
type Runtime struct {
	mu       sync.Mutex
	level    string
	stack    []string
	useColor bool
}

// Default is the process-wide logging runtime the CLI configures once.
var Default = &Runtime{level: "info"}

// Level returns the current named level.
func (r *Runtime) Level() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.level == "" {
		return "info"
	}
	return r.level
}

// SetLevel switches the current level. Unknown names are reported and the
// level is left unchanged; the logger itself must never fail.
func (r *Runtime) SetLevel(name string) {
	lvl, err := ParseLevel(name)
	if err != nil {
		SafeLog(fmt.Sprintf("[LOGGER ERROR] %v", err))
		return
	}
	r.mu.Lock()
	r.level = strings.ToLower(strings.TrimSpace(name))
	r.mu.Unlock()
	zerolog.SetGlobalLevel(lvl)
}

// PushLevel applies a scoped level override and returns the restore
// function. Callers defer the restore so the previous level comes back on
// every path.
func (r *Runtime) PushLevel(name string) (restore func()) {
	r.mu.Lock()
	r.stack = append(r.stack, r.Level())
	r.mu.Unlock()

	r.SetLevel(name)

	return func() {
		r.mu.Lock()
		n := len(r.stack)
		if n == 0 {
			r.mu.Unlock()
			return
		}
		prev := r.stack[n-1]
		r.stack = r.stack[:n-1]
		r.mu.Unlock()
		r.SetLevel(prev)
	}
}

// UseColor reports the current color flag.
func (r *Runtime) UseColor() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.useColor
}

// Setup configures the global zerolog logger: console output on stderr plus
// a best-effort log file under the XDG state directory. It records the color
// flag on the runtime and applies the initial level.
func (r *Runtime) Setup(level string, useColor bool) {
	r.mu.Lock()
	r.useColor = useColor
	r.mu.Unlock()

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !useColor,
	}

	writers := []io.Writer{consoleWriter}

	logFile := logFilePath()
	fileHandle, err := openLogFile(logFile)
	if err == nil {
		writers = append(writers, fileHandle)
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if err != nil {
		log.Debug().Err(err).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}

	r.SetLevel(level)
	log.Debug().Str("level", r.Level()).Str("logFile", logFile).Msg("Logger initialized")
}

// ShouldUseColor decides the color default: NO_COLOR wins, FORCE_COLOR
// overrides auto-detection, otherwise color follows the terminal.
func ShouldUseColor() bool {
	if termenv.EnvNoColor() {
		return false
	}
	switch strings.ToLower(os.Getenv("FORCE_COLOR")) {
	case "1", "true", "yes":
		return true
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// GetLogger returns a contextualized logger with the given component name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// SafeLog is the emergency write path: it reports through plain stderr and
// never fails, so the original error is not lost when the logger itself is
// broken.
func SafeLog(msg string) {
	defer func() {
		_ = recover()
	}()
	fmt.Fprintln(os.Stderr, msg)
}

func logFilePath() string {
	return filepath.Join(xdg.StateHome, "stagehand", "stagehand.log")
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
