// pkg/logging/logging.go
package logging

import (
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted by ConfigureGlobalLogging.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	// logWriter stores the current log writer globally
	logWriter io.Writer = os.Stderr
)

// stdLogWriter is a custom writer that reformats stdlog output to match zerolog's format
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	message := strings.TrimSuffix(string(p), "\n")

	// Example stdlog output: "2026/05/23 14:40:15 builder.go:35: parsed D01_V_native_0001.xml"
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

// init routes the default logger to stderr at error level.
func init() {
	log.Logger = zerolog.New(consoleWriter(logWriter)).With().Timestamp().Logger().Level(zerolog.ErrorLevel)
}

func consoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
}

// ConfigureGlobalLogging configures the global logging settings for the application.
// format is "console" (default) or "json".
func ConfigureGlobalLogging(levelStr, format string) error {
	level := parseLogLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	w := getLogWriter()
	if format != FormatJSON {
		w = consoleWriter(w)
	}

	logContext := zerolog.New(w).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: WithLevelOverride(log.Logger, zerolog.DebugLevel)})

	return nil
}

// ConfigureGlobal sets the global level and logger without touching stdlog.
func ConfigureGlobal(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(consoleWriter(getLogWriter())).With().Timestamp().Logger().Level(level)
}

// NewLogger returns a component-scoped logger writing JSON to the global writer.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return NewLoggerWithWriter(component, level, getLogWriter())
}

// NewLoggerWithWriter returns a component-scoped JSON logger writing to w.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

// Component derives a component-scoped logger from the global logger.
func Component(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// LevelFromVerbosity maps -v counts to a level; explicit wins when set.
func LevelFromVerbosity(explicit string, verbosity int, debug bool) string {
	switch {
	case debug:
		return zerolog.DebugLevel.String()
	case verbosity >= 2:
		return zerolog.TraceLevel.String()
	case verbosity == 1:
		return zerolog.DebugLevel.String()
	case explicit != "":
		return explicit
	}
	return zerolog.InfoLevel.String()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		levelString = "error"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to error level.")
		return zerolog.ErrorLevel
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
