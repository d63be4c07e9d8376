package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"facturier/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "facturier",
	Short: "Turn field-service job emails into invoices",
	Long: `facturier reads the plain-text email a technician sends after a job
(client, address, dates, notes, billable lines, combustion readings) and turns
it into an invoice: a JSON record, a terminal preview, or a numbered PDF/XLSX
document.

Sender, payment and footer details are read from the environment or a .env
file: SENDER_NAME, SENDER_ADDRESS, SENDER_PHONE, SENDER_EMAIL, PAYMENT_IBAN,
PAYMENT_TVA_NOTE, PAYMENT_CONDITIONS, FOOTER_ENTERPRISE, FOOTER_ADDRESS,
FOOTER_SIRET, FOOTER_APE and OPERATION_TYPE.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("facturier executed without subcommand")

		_ = cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
