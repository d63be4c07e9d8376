package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // trace, debug, info, warn, error, fatal, panic
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, or custom format
	Output     string // stdout, stderr, or file path
}

// DefaultConfig returns the logging configuration used when none is loaded.
// Logs go to stderr since stdout carries command output (JSON, preview).
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "console",
		TimeFormat: time.RFC3339,
		Output:     "stderr",
	}
}

// Setup initializes the global logger with the provided configuration
func Setup(config LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	output, err := openOutput(config.Output)
	if err != nil {
		return err
	}

	// Unknown formats fall back to console
	if strings.ToLower(config.Format) != "json" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
			NoColor:    output != os.Stderr && output != os.Stdout,
		}
	}

	log.Logger = zerolog.New(output).With().
		Timestamp().
		Caller().
		Logger()

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return nil
}

func openOutput(target string) (io.Writer, error) {
	switch target {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	default:
		// Assume it's a file path
		return os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	}
}

// WithComponent returns a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// WithSource returns a logger tagged with the email file being processed.
func WithSource(component, source string) zerolog.Logger {
	return log.Logger.With().
		Str("component", component).
		Str("source", source).
		Logger()
}
