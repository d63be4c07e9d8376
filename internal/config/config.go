package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"facturier/internal/invoice"
	"facturier/internal/logger"
	"facturier/internal/parser"
	"facturier/pkg/models"
)

type Config struct {
	// Organization constants printed on every invoice
	OperationType     string
	SenderName        string
	SenderAddress     string
	SenderPhone       string
	SenderEmail       string
	PaymentIBAN       string
	PaymentTVANote    string
	PaymentConditions string
	FooterEnterprise  string
	FooterAddress     string
	FooterSIRET       string
	FooterAPE         string

	// Invoice numbering and dates
	InvoiceStartNumber int
	PaymentTermDays    int

	// Parsing policies
	DetailGrouping     parser.DetailGrouping
	BareMultiplierUnit string

	// Rendering
	LogoPath      string
	OutputDir     string
	RenderWorkers int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	defaults := models.DefaultOrganization()

	config := &Config{
		OperationType:      getEnv("OPERATION_TYPE", defaults.OperationType),
		SenderName:         getEnv("SENDER_NAME", defaults.Sender.Name),
		SenderAddress:      unescapeNewlines(getEnv("SENDER_ADDRESS", defaults.Sender.Address)),
		SenderPhone:        getEnv("SENDER_PHONE", defaults.Sender.Phone),
		SenderEmail:        getEnv("SENDER_EMAIL", defaults.Sender.Email),
		PaymentIBAN:        getEnv("PAYMENT_IBAN", defaults.Payment.IBAN),
		PaymentTVANote:     getEnv("PAYMENT_TVA_NOTE", defaults.Payment.TVANote),
		PaymentConditions:  getEnv("PAYMENT_CONDITIONS", defaults.Payment.Conditions),
		FooterEnterprise:   getEnv("FOOTER_ENTERPRISE", defaults.Footer.Enterprise),
		FooterAddress:      getEnv("FOOTER_ADDRESS", defaults.Footer.FullAddress),
		FooterSIRET:        getEnv("FOOTER_SIRET", defaults.Footer.SIRET),
		FooterAPE:          getEnv("FOOTER_APE", defaults.Footer.APE),
		BareMultiplierUnit: getEnv("BARE_MULTIPLIER_UNIT", "m"),
		LogoPath:           getEnv("LOGO_PATH", ""),
		OutputDir:          getEnv("OUTPUT_DIR", "."),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:      getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:          getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.InvoiceStartNumber, err = parseIntEnv("INVOICE_START_NUMBER", 58); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.PaymentTermDays, err = parseIntEnv("PAYMENT_TERM_DAYS", 30); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.RenderWorkers, err = parseIntEnv("RENDER_WORKERS", 4); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.DetailGrouping, err = parser.ParseDetailGrouping(getEnv("DETAIL_GROUPING", "date")); err != nil {
		return nil, fmt.Errorf("config validation failed: DETAIL_GROUPING: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.InvoiceStartNumber < 0 {
		return fmt.Errorf("INVOICE_START_NUMBER must not be negative")
	}
	if c.PaymentTermDays < 0 {
		return fmt.Errorf("PAYMENT_TERM_DAYS must not be negative")
	}
	if c.RenderWorkers < 1 {
		return fmt.Errorf("RENDER_WORKERS must be at least 1")
	}
	if strings.TrimSpace(c.SenderName) == "" {
		return fmt.Errorf("SENDER_NAME must not be blank")
	}
	if c.LogoPath != "" {
		if _, err := os.Stat(c.LogoPath); err != nil {
			return fmt.Errorf("LOGO_PATH: %w", err)
		}
	}
	return nil
}

// Organization returns the constants copied into every parsed record.
func (c *Config) Organization() models.Organization {
	return models.Organization{
		OperationType: c.OperationType,
		Sender: models.Sender{
			Name:    c.SenderName,
			Address: c.SenderAddress,
			Phone:   c.SenderPhone,
			Email:   c.SenderEmail,
		},
		Payment: models.Payment{
			IBAN:       c.PaymentIBAN,
			TVANote:    c.PaymentTVANote,
			Conditions: c.PaymentConditions,
		},
		Footer: models.Footer{
			Enterprise:  c.FooterEnterprise,
			FullAddress: c.FooterAddress,
			SIRET:       c.FooterSIRET,
			APE:         c.FooterAPE,
		},
	}
}

// ParserOptions returns the parser options matching this configuration.
func (c *Config) ParserOptions() []parser.Option {
	return []parser.Option{
		parser.WithOrganization(c.Organization()),
		parser.WithDetailGrouping(c.DetailGrouping),
		parser.WithBareMultiplierUnit(c.BareMultiplierUnit),
	}
}

// StampConfig returns the stamping settings (payment term, wall clock).
func (c *Config) StampConfig() invoice.StampConfig {
	stamp := invoice.DefaultStampConfig()
	stamp.TermDays = c.PaymentTermDays
	return stamp
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

// unescapeNewlines lets multi-line addresses live on one line of a .env file.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
