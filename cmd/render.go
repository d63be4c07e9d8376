package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"facturier/internal/invoice"
	"facturier/internal/logger"
	"facturier/internal/parser"
	"facturier/internal/render"
	"facturier/pkg/models"
)

var renderCmd = &cobra.Command{
	Use:   "render <email-file>...",
	Short: "Number job emails and write them as PDF or XLSX invoices",
	Long: `Parse each email file, give it the next invoice number and write the
invoice to Facture-<number>.pdf (or .xlsx) in the output directory.

Directories are searched for .txt and .eml files. Files are numbered in the
order they are given, then written in parallel. The counter starts from
INVOICE_START_NUMBER (or --start), so the first invoice gets that number + 1.
A file that cannot be read is skipped without consuming a number; a file
that fails to render keeps its number. The summary lists which files were
written.

Environment variables:
  OUTPUT_DIR            - default output directory
  INVOICE_START_NUMBER  - counter seed (default 58)
  PAYMENT_TERM_DAYS     - days between invoice date and due date (default 30)
  LOGO_PATH             - optional PNG/JPEG printed on PDF invoices
  RENDER_WORKERS        - number of parallel render workers (default 4)`,
	Example: `  # Render one invoice as PDF in the current directory
  facturier render job.txt

  # Render a week of jobs as XLSX, numbering from 121
  facturier render jobs/ --format xlsx --dir out --start 120`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

// RenderResult describes the outcome for one email file.
type RenderResult struct {
	Source        string
	InvoiceNumber string
	OutputPath    string
	Warnings      int
	Err           error
}

// RenderJob is a stamped record waiting to be written.
type RenderJob struct {
	Index  int
	Record models.InvoiceRecord
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("format", "f", "pdf", "Output format: pdf or xlsx")
	renderCmd.Flags().StringP("dir", "d", "", "Output directory (default: OUTPUT_DIR or .)")
	renderCmd.Flags().Int("start", -1, "Counter seed, the first invoice gets start+1 (default: INVOICE_START_NUMBER)")
	renderCmd.Flags().String("logo", "", "Logo image for PDF invoices (default: LOGO_PATH)")
	renderCmd.Flags().Int("workers", 0, "Number of parallel render workers (default: RENDER_WORKERS or 4)")
	addParserFlags(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("render")

	formatFlag, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("dir")
	logoPath, _ := cmd.Flags().GetString("logo")
	numWorkers, _ := cmd.Flags().GetInt("workers")

	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if logoPath == "" {
		logoPath = cfg.LogoPath
	}
	if numWorkers <= 0 {
		numWorkers = cfg.RenderWorkers
	}

	sources, err := findEmailFiles(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no email files found in %s", strings.Join(args, ", "))
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Error().Err(err).Str("dir", outputDir).Msg("Failed to create output directory")
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	renderer, err := render.New(format, render.PDFOptions{LogoPath: logoPath})
	if err != nil {
		return err
	}

	counter := invoice.NewCounter(startNumber(cmd, cfg.InvoiceStartNumber))
	stamper, err := invoice.NewStamper(counter, cfg.StampConfig())
	if err != nil {
		return handleRenderError(err, log)
	}

	ctx, cancel := createRenderContext(log)
	defer cancel()

	log.Info().
		Int("files", len(sources)).
		Str("format", string(format)).
		Str("dir", outputDir).
		Int("first_number", counter.Last()+1).
		Int("workers", numWorkers).
		Msg("Starting invoice rendering")

	startTime := time.Now()

	results, jobs := stampEmails(cmd, sources, newParser(cmd, cfg), stamper)
	renderInParallel(ctx, jobs, results, renderer, format, outputDir, numWorkers, log)

	return summarizeRender(cmd, results, time.Since(startTime), log)
}

// findEmailFiles expands directories into the .txt and .eml files they
// contain. Other arguments are kept as given.
func findEmailFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			ext := strings.ToLower(filepath.Ext(d.Name()))
			if !d.IsDir() && (ext == ".txt" || ext == ".eml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
	}

	return files, nil
}

// stampEmails parses and numbers the emails in the order given, so numbering
// does not depend on which worker finishes first. Unreadable files get no number.
func stampEmails(cmd *cobra.Command, sources []string, p *parser.Parser, stamper *invoice.Stamper) ([]RenderResult, []RenderJob) {
	results := make([]RenderResult, len(sources))
	var jobs []RenderJob

	for i, source := range sources {
		log := logger.WithSource("render", source)
		results[i].Source = source

		text, err := readEmail(source, cmd.InOrStdin(), log)
		if err != nil {
			results[i].Err = err
			continue
		}

		rec := p.Parse(text)
		results[i].Warnings = len(reportWarnings(rec, log))

		issued := stamper.Stamp(rec)
		results[i].InvoiceNumber = issued.InvoiceNumber
		jobs = append(jobs, RenderJob{Index: i, Record: issued})
	}

	return results, jobs
}

// renderInParallel writes the stamped records using a worker pool. Each job
// fills its own slot in results.
func renderInParallel(ctx context.Context, jobs []RenderJob, results []RenderResult, renderer render.Renderer, format render.Format, outputDir string, numWorkers int, log zerolog.Logger) {
	queue := make(chan RenderJob, len(jobs))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range queue {
				result := &results[job.Index]

				if ctx.Err() != nil {
					result.Err = fmt.Errorf("rendering canceled: %w", ctx.Err())
					continue
				}

				log.Debug().
					Int("worker", workerID).
					Str("source", result.Source).
					Str("invoice_number", job.Record.InvoiceNumber).
					Msg("Worker rendering invoice")

				result.OutputPath = filepath.Join(outputDir, render.FileName(job.Record, format))
				result.Err = writeInvoice(renderer, job.Record, result.OutputPath, logger.WithSource("render", result.Source))

				mu.Lock()
				processedCount++
				log.Debug().
					Int("done", processedCount).
					Int("total", len(jobs)).
					Msg("Render progress")
				mu.Unlock()
			}
		}(w)
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	wg.Wait()
}

// writeInvoice renders rec into a new file at path. A failed render leaves no file behind.
func writeInvoice(renderer render.Renderer, rec models.InvoiceRecord, path string, log zerolog.Logger) error {
	out, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Str("output_file", path).Msg("Failed to create output file")
		return fmt.Errorf("failed to create output file: %w", err)
	}

	renderErr := renderer.Render(out, rec)
	closeErr := out.Close()
	if renderErr != nil {
		_ = os.Remove(path)
		return handleRenderError(renderErr, log)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write output file: %w", closeErr)
	}

	log.Info().
		Str("invoice_number", rec.InvoiceNumber).
		Str("client", rec.Client.Name).
		Str("output_file", path).
		Msg("Invoice written")

	return nil
}

// summarizeRender prints one line per file and fails when any file failed.
func summarizeRender(cmd *cobra.Command, results []RenderResult, duration time.Duration, log zerolog.Logger) error {
	out := cmd.OutOrStdout()

	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", r.Source, r.Err)
		case r.Warnings > 0:
			fmt.Fprintf(out, "! %s -> %s (facture %s, %d item warning(s))\n", r.Source, r.OutputPath, r.InvoiceNumber, r.Warnings)
		default:
			fmt.Fprintf(out, "✓ %s -> %s (facture %s)\n", r.Source, r.OutputPath, r.InvoiceNumber)
		}
	}

	log.Info().
		Int("total", len(results)).
		Int("written", len(results)-failed).
		Int("failed", failed).
		Dur("duration", duration).
		Msg("Invoice rendering completed")

	if failed > 0 {
		return fmt.Errorf("%d of %d invoice(s) could not be rendered", failed, len(results))
	}
	return nil
}

// createRenderContext returns a context canceled on interrupt so a batch can
// stop between files.
func createRenderContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, finishing current invoice")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleRenderError provides user-friendly error messages for stamping and rendering failures
func handleRenderError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Invoice rendering failed")

	switch {
	case errors.Is(err, render.ErrNotStamped):
		return fmt.Errorf("invoice has no number or dates, it must be stamped before rendering")
	case errors.Is(err, invoice.ErrInvalidTermDays):
		return fmt.Errorf("PAYMENT_TERM_DAYS must be zero or more: %w", err)
	case errors.Is(err, invoice.ErrTotalsFailed):
		return fmt.Errorf("could not compute the invoice totals: %w", err)
	case errors.Is(err, render.ErrDocumentFailed):
		return fmt.Errorf("document generation failed, check LOGO_PATH and the item texts: %w", err)
	case errors.Is(err, render.ErrWriteFailed):
		return fmt.Errorf("could not write the invoice: %w", err)
	default:
		return fmt.Errorf("invoice rendering failed: %w", err)
	}
}
