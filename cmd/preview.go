package cmd

import (
	"github.com/spf13/cobra"

	"facturier/internal/invoice"
	"facturier/internal/logger"
	"facturier/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview [email-file|-]",
	Short: "Print the invoice a job email would produce",
	Long: `Parse a job email, number it with the next invoice number and print
the invoice as text: header, client, intervention notes, items table, totals,
payment instructions and footer.

The preview does not consume a number from any persistent store; use --start
to see the number the invoice would get.`,
	Example: `  # Preview an email file
  facturier preview job.txt

  # Preview as invoice number 121
  facturier preview job.txt --start 120`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Int("start", -1, "Counter seed, the invoice gets start+1 (default: INVOICE_START_NUMBER)")
	addParserFlags(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("preview")

	source := stdinSource
	if len(args) == 1 {
		source = args[0]
	}

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

	stamper, err := invoice.NewStamper(invoice.NewCounter(startNumber(cmd, cfg.InvoiceStartNumber)), cfg.StampConfig())
	if err != nil {
		return handleRenderError(err, log)
	}

	if err := render.Preview(cmd.OutOrStdout(), stamper.Stamp(rec)); err != nil {
		return handleRenderError(err, log)
	}

	log.Debug().Str("source", source).Msg("Preview printed")
	return nil
}

// startNumber returns the --start flag when set, fallback otherwise.
func startNumber(cmd *cobra.Command, fallback int) int {
	if start, _ := cmd.Flags().GetInt("start"); start >= 0 {
		return start
	}
	return fallback
}
