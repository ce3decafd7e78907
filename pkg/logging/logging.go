// pkg/logging/logging.go
package logging

import (
	"fmt"
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// logWriter stores the current log writer globally
	logWriter io.Writer
)

// Options selects how global logging is rendered.
type Options struct {
	Level   string
	Format  string // text | json
	NoColor bool
}

// stdLogWriter is a custom writer that reformats stdlog output to match zerolog's format
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSuffix(string(p), "\n")

	// Example stdlog output: "2025/05/23 14:40:15 cache.go:35: cache entry written"
	parts := strings.SplitN(message, " ", 4)
	if len(parts) >= 4 {
		stdTime, err := time.Parse("2006/01/02 15:04:05", parts[0]+" "+parts[1])
		if err == nil {
			fileLine := strings.TrimSuffix(parts[2], ":")

			w.logger.Debug().
				Str("file", fileLine).
				Time("time", stdTime).
				Msg(parts[3])
			return len(p), nil
		}
	}

	w.logger.Debug().Msg(message)
	return len(p), nil
}

// init routes logs to a console writer on stderr, so command output on
// stdout stays machine readable, and keeps only warnings until configured.
func init() {
	logWriter = consoleWriter(os.Stderr, false)
	log.Logger = zerolog.New(logWriter).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
}

// Configure sets up the global logger from opts. It replaces any writer
// attached by an earlier run.
func Configure(opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", "text":
		SetLogWriter(consoleWriter(os.Stderr, opts.NoColor))
	case "json":
		SetLogWriter(os.Stderr)
	default:
		return fmt.Errorf("unknown log format %q (must be 'text' or 'json')", opts.Format)
	}
	return ConfigureGlobalLogging(opts.Level)
}

// AttachFile appends JSON log lines to the file at path in addition to the
// current writer. The returned function detaches and closes the file.
func AttachFile(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	prev := getLogWriter()
	SetLogWriter(zerolog.MultiLevelWriter(prev, f))
	ConfigureGlobal(zerolog.GlobalLevel())

	return func() error {
		SetLogWriter(prev)
		ConfigureGlobal(zerolog.GlobalLevel())
		return f.Close()
	}, nil
}

// ConfigureGlobalLogging configures the global logging settings for the application.
func ConfigureGlobalLogging(levelStr string) error {
	level := parseLogLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	w := getLogWriter()

	logContext := zerolog.New(w).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	// Configure stdlog to use our custom writer
	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: WithLevelOverride(log.Logger, zerolog.DebugLevel)})

	return nil
}

// ConfigureGlobal sets the global level and logger without touching the writer.
func ConfigureGlobal(level zerolog.Level) {
	_ = ConfigureGlobalLogging(level.String())
}

// NewLogger returns a component logger writing to the global writer.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, getLogWriter())
}

// NewLoggerWithWriter returns a component logger writing JSON to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		levelString = "info"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to info level.")
		return zerolog.InfoLevel
	}
	return level
}

// getLogWriter returns the configured log writer
func getLogWriter() io.Writer {
	return logWriter
}

// SetLogWriter sets the global log writer
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// LevelOverrideHook provides functionality to override log levels
// and filter logs below a minimum severity level.
type LevelOverrideHook struct {
	minSeverity zerolog.Level // Minimum log level to keep
	targetLevel zerolog.Level // Level to assign to NoLevel events
}

// NewLevelOverrideHook creates a new LevelOverrideHook instance.
// minSeverity: Logs below this level will be discarded
// targetLevel: NoLevel events will be upgraded to this level
func NewLevelOverrideHook(minSeverity, targetLevel zerolog.Level) *LevelOverrideHook {
	return &LevelOverrideHook{
		minSeverity: minSeverity,
		targetLevel: targetLevel,
	}
}

// Run implements zerolog.Hook interface and performs the log level processing.
func (h LevelOverrideHook) Run(e *zerolog.Event, currentLevel zerolog.Level, _ string) {
	if h.minSeverity > h.targetLevel {
		e.Discard()
		return
	}

	if currentLevel == zerolog.NoLevel {
		e.Str("level", h.targetLevel.String())
	}
}

// WithLevelOverride configures a logger to handle NoLevel events and level filtering.
func WithLevelOverride(logger zerolog.Logger, targetLevel zerolog.Level) zerolog.Logger {
	return logger.Hook(NewLevelOverrideHook(logger.GetLevel(), targetLevel))
}
