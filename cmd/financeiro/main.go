package main

import (
	"context"
	"os"
	"time"

	"financeiro/internal/backend"
	"financeiro/internal/cli"
	apphttp "financeiro/internal/http"
	"financeiro/internal/log"
	"financeiro/internal/metrics"
	"financeiro/internal/report"
	"financeiro/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting financeiro server",
		"port", cfg.Port,
		"backend", cfg.DataBackend)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to create backend config", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "type", backendConfig.Type)
		os.Exit(1)
	}

	taxonomy := cli.LoadTaxonomy(logger, cfg.TaxonomyFile)
	m := metrics.New()

	opts := report.Options{Title: cfg.ReportTitle}
	if cfg.ReportLogoPath != "" {
		logo, err := report.LoadLogo(cfg.ReportLogoPath)
		if err != nil {
			logger.Warn("Failed to load report logo, continuing without it",
				log.FieldError, err, "path", cfg.ReportLogoPath)
		} else {
			opts.Logo = logo
		}
	}

	sessions := services.NewSessionManager(services.Deps{
		Store:     result.Store,
		Publisher: result.Publisher,
		Taxonomy:  taxonomy,
		Metrics:   m,
		Logger:    logger,
	}, cfg.SessionCacheSize, cfg.SessionTTL)
	sessions.Start(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Sessions:           sessions,
		Store:              result.Store,
		Taxonomy:           taxonomy,
		Metrics:            m,
		Logger:             logger,
		Report:             opts,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		sessions.Close()
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
