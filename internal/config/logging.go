package config

import (
	"fmt"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/pillarsite/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the configured level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// validateLogging rejects misspelled levels and formats in the file. Empty
// values are allowed and take the defaults.
func validateLogging(raw LoggingConfig) error {
	if raw.Level != "" {
		if _, err := logLevelNormalizer.NormalizeWithError(string(raw.Level)); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	if raw.Format != "" {
		if _, err := logFormatNormalizer.NormalizeWithError(string(raw.Format)); err != nil {
			return fmt.Errorf("logging.format: %w", err)
		}
	}
	return nil
}

// NewLogger builds the process logger for this configuration. verbose forces
// debug output regardless of the configured level.
func (l LoggingConfig) NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.Level.SlogLevel()}
	if verbose {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	if l.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
