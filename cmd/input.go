package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"facturier/internal/config"
	"facturier/internal/logger"
	"facturier/internal/parser"
)

// maxEmailSizeBytes bounds the input read from a file or stdin.
const maxEmailSizeBytes = 1 << 20

const stdinSource = "-"

var errEmailTooLarge = errors.New("email text too large")

// readEmail returns the text of source, a file path or "-" for stdin.
func readEmail(source string, stdin io.Reader, log zerolog.Logger) (string, error) {
	if source == "" || source == stdinSource {
		log.Debug().Msg("Reading email from stdin")
		return readLimited(stdin, "stdin")
	}

	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", source).
				Msg("Email file not found")
			return "", fmt.Errorf("email file not found: %s", source)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", source).
				Msg("Permission denied accessing email file")
			return "", fmt.Errorf("permission denied accessing email file: %s", source)
		}
		return "", fmt.Errorf("error accessing email file: %w", err)
	}

	if !info.Mode().IsRegular() {
		log.Error().
			Str("file", source).
			Msg("Path is not a regular file")
		return "", fmt.Errorf("path is not a regular file: %s", source)
	}

	if info.Size() == 0 {
		log.Warn().
			Str("file", source).
			Msg("Email file is empty, the invoice will only carry placeholders")
	}

	f, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("failed to open email file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close email file")
		}
	}()

	return readLimited(f, source)
}

func readLimited(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEmailSizeBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxEmailSizeBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", errEmailTooLarge, name, maxEmailSizeBytes)
	}
	return string(data), nil
}

// loadConfig loads the environment configuration for a command.
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, fmt.Errorf("invalid configuration, check your .env file: %w", err)
	}
	return cfg, nil
}

// addParserFlags registers the flags overriding the parsing policies.
func addParserFlags(c *cobra.Command) {
	c.Flags().Bool("per-line", false, "Keep one detail entry per note line instead of grouping by date")
	c.Flags().String("bare-unit", "", "Unit for quantity*price lines without a unit (default: BARE_MULTIPLIER_UNIT or m)")
}

// newParser builds a parser from the configuration and the command flags.
func newParser(c *cobra.Command, cfg *config.Config) *parser.Parser {
	opts := cfg.ParserOptions()

	if perLine, _ := c.Flags().GetBool("per-line"); perLine {
		opts = append(opts, parser.WithDetailGrouping(parser.GroupPerLine))
	}
	if unit, _ := c.Flags().GetString("bare-unit"); unit != "" {
		opts = append(opts, parser.WithBareMultiplierUnit(unit))
	}
	opts = append(opts, parser.WithLogger(logger.WithComponent("parser")))

	return parser.New(opts...)
}
