package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"facturier/internal/invoice"
	"facturier/internal/logger"
	"facturier/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [email-file|-]",
	Short: "Extract a structured invoice record from a job email",
	Long: `Parse the plain-text email describing a job and print the resulting
invoice record as JSON. The record is not numbered: invoice number, invoice
date and due date stay empty until the record is rendered.

Line layout of the email:
  1. client name
  2. client address (a line break is inserted before the postal code)
  3. a date, an "Intervention <place>" line, or any other text used as date context
  then dates, notes, billable lines and an optional "Combustion" block.

Items whose quantity × unit price does not match their total are reported
as warnings on the log.`,
	Example: `  # Parse an email file
  facturier parse job.txt

  # Parse from stdin and save the record
  cat job.txt | facturier parse - -o record.json

  # Keep one detail entry per note line, count bare multipliers in pieces
  facturier parse job.txt --per-line --bare-unit pce`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	addParserFlags(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	outputPath, _ := cmd.Flags().GetString("output")
	source := stdinSource
	if len(args) == 1 {
		source = args[0]
	}

	log.Info().
		Str("source", source).
		Str("output", outputPath).
		Msg("Starting email parsing")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	text, err := readEmail(source, cmd.InOrStdin(), log)
	if err != nil {
		return err
	}

	rec := newParser(cmd, cfg).Parse(text)
	reportWarnings(rec, log)

	log.Info().
		Str("id", rec.ID).
		Str("client", rec.Client.Name).
		Int("items", len(rec.Items)).
		Int("details", len(rec.Intervention.Details)).
		Msg("Email parsed")

	return outputRecord(cmd, rec, outputPath, log)
}

// reportWarnings logs items whose figures do not add up.
func reportWarnings(rec models.InvoiceRecord, log zerolog.Logger) []invoice.ItemWarning {
	warnings := invoice.NewItemValidation().Check(rec.Items)
	if len(warnings) > 0 {
		log.Warn().
			Str("client", rec.Client.Name).
			Int("warnings", len(warnings)).
			Msg("Some item totals do not match quantity × unit price, check the email")
	}
	return warnings
}

// outputRecord writes the record as indented JSON to outputPath or stdout.
func outputRecord(cmd *cobra.Command, rec models.InvoiceRecord, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal invoice record to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Invoice record written to file")
		return nil
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(append(jsonData, '\n')); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
