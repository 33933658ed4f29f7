package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financeiro/internal/amqp"
	"financeiro/internal/backend"
	"financeiro/internal/cli"
	"financeiro/internal/config"
	"financeiro/internal/log"
	"financeiro/internal/metrics"
	"financeiro/internal/sheets"
	gsheet "financeiro/internal/sheets/google"
	sheetsmem "financeiro/internal/sheets/memory"
	"financeiro/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting financeiro-worker", "backend", cfg.DataBackend)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to create backend config", log.FieldError, err)
		os.Exit(1)
	}
	// The worker only reads ledgers; it never publishes.
	backendConfig.AMQPURL = ""

	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "type", backendConfig.Type)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	mirror, err := newMirror(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(result.Store, mirror, metrics.New(), logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Performing startup sync check...")
		if err := syncWorker.StartupSyncCheck(gctx); err != nil && !errors.Is(err, context.Canceled) {
			// A failed check is retried on the next start; consumption goes on.
			logger.Error("Failed startup sync check", log.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		return amqpClient.ConsumeLedgerSaved(gctx, syncWorker.HandleLedgerSaved)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// newMirror returns the spreadsheet mirror, or an in-process one when no
// spreadsheet is configured.
func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.LedgerMirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring ledgers in memory only")
		return sheetsmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
