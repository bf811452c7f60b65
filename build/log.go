// Package build provides the logging primitives shared by every other
// package in the wallet engine: a rotating log file, a registry of
// per-subsystem loggers, and the glue needed to back a slog.Logger with
// either a file, stdout, or both.
package build

import (
	"io"
	"os"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogType describes how a LogWriter delivers bytes.
type LogType int

const (
	// LogTypeNone discards all log output.
	LogTypeNone LogType = iota

	// LogTypeStdOut logs to stdout only.
	LogTypeStdOut

	// LogTypeDefault logs to both stdout and a rotating log file.
	LogTypeDefault
)

// LoggingType is the active LogType for this build. It is a var, not a
// const, so callers can override it (e.g. via a `filelog` build tag) before
// InitLogRotator is called.
var LoggingType = LogTypeDefault

// LogWriter is an io.Writer that logs to both standard output and a
// rotating log file, as dictated by LoggingType.
type LogWriter struct {
	Rotator *rotator.Rotator
}

// Write writes the data in p to both os.Stdout and the log rotator, if one
// has been initialized and LoggingType calls for file logging.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	if LoggingType == LogTypeStdOut || LoggingType == LogTypeDefault {
		os.Stdout.Write(p)
	}
	if w.Rotator != nil && LoggingType == LogTypeDefault {
		w.Rotator.Write(p)
	}
	return len(p), nil
}

// RotatingLogWriter is the root of the logging system: one rotator, one
// slog backend, and a registry of per-subsystem loggers that can be
// re-leveled at runtime.
type RotatingLogWriter struct {
	mu      sync.Mutex
	backend *slog.Backend
	writer  *LogWriter
	loggers map[string]slog.Logger
}

// NewRotatingLogWriter creates a log writer with no output file configured.
// InitLogRotator must be called before any subsystem logger produces
// output that should survive to disk.
func NewRotatingLogWriter() *RotatingLogWriter {
	writer := &LogWriter{}
	return &RotatingLogWriter{
		backend: slog.NewBackend(writer),
		writer:  writer,
		loggers: make(map[string]slog.Logger),
	}
}

// InitLogRotator opens and/or creates the log file at the given path,
// rotating it once it exceeds maxSizeKB kilobytes, and keeping at most
// maxFiles rotated copies around.
func (r *RotatingLogWriter) InitLogRotator(logFile string, maxSizeKB, maxFiles int) error {
	rot, err := rotator.New(logFile, int64(maxSizeKB*1024), false, maxFiles)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.writer.Rotator = rot
	r.mu.Unlock()
	return nil
}

// GenSubLogger spins up a fresh slog.Logger for subsystem, backed by this
// writer's rotator/stdout split.
func (r *RotatingLogWriter) GenSubLogger(subsystem string) slog.Logger {
	return r.backend.Logger(subsystem)
}

// RegisterSubLogger records logger under subsystem so SetLogLevel(s) can
// find and adjust it later.
func (r *RotatingLogWriter) RegisterSubLogger(subsystem string, logger slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[subsystem] = logger
}

// SetLogLevel adjusts the level of the named subsystem logger, if
// registered.
func (r *RotatingLogWriter) SetLogLevel(subsystem string, level string) {
	r.mu.Lock()
	logger, ok := r.loggers[subsystem]
	r.mu.Unlock()
	if !ok {
		return
	}
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return
	}
	logger.SetLevel(lvl)
}

// SetLogLevels applies level to every registered subsystem logger.
func (r *RotatingLogWriter) SetLogLevels(level string) {
	r.mu.Lock()
	subsystems := make([]string, 0, len(r.loggers))
	for s := range r.loggers {
		subsystems = append(subsystems, s)
	}
	r.mu.Unlock()

	for _, s := range subsystems {
		r.SetLogLevel(s, level)
	}
}

// NewSubLogger creates a logger for subsystem. If genLogger is nil the
// logger is disabled until a root RotatingLogWriter replaces it via
// SetupLoggers-style wiring — this mirrors the placeholder-logger trick
// used before the root logger exists.
func NewSubLogger(subsystem string, genLogger func(string) slog.Logger) slog.Logger {
	if genLogger == nil {
		return slog.Disabled
	}
	return genLogger(subsystem)
}

// LogClosure defers formatting of a log line until it's known the line will
// actually be emitted.
type LogClosure func() string

// String invokes the underlying closure and returns the result.
func (c LogClosure) String() string {
	return c()
}

// NewLogClosure returns a fmt.Stringer that defers evaluation of fn.
func NewLogClosure(fn func() string) LogClosure {
	return LogClosure(fn)
}

var _ io.Writer = (*LogWriter)(nil)
