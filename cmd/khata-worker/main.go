package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"khata/internal/amqp"
	"khata/internal/config"
	"khata/internal/kv/sqlite"
	"khata/internal/ledger"
	applog "khata/internal/log"
	"khata/internal/services"
	gsheet "khata/internal/sheets/google"
	"khata/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig()).WithComponent("worker")
	applog.SetDefault(logger)

	logger.Info("Starting khata-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always reads the durable store; it shares the database
	// file with the server process.
	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ledg := ledger.New(ledger.Deps{Store: store})
	if err := ledg.Load(context.Background()); err != nil {
		logger.Error("Failed to load ledger state", "error", err)
		os.Exit(1)
	}

	// Google Sheets mirror is optional.
	var syncWorker *worker.SyncWorker
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		syncWorker = worker.NewSyncWorker(ledg, sheetsClient)
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	templates, err := services.LoadRecurringTemplates(cfg.RecurringFile)
	if err != nil {
		logger.Error("Failed to load recurring expense templates", "error", err, "path", cfg.RecurringFile)
		os.Exit(1)
	}
	recurring := services.NewRecurringProcessor(ledg, templates, nil)
	logger.Info("Recurring expense templates loaded", "count", len(templates), "path", cfg.RecurringFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// AMQP consumption feeds the Sheets mirror. Broken connections are
	// redialed every SyncInterval.
	if syncWorker != nil {
		dial := func() (worker.Consumer, error) {
			return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		}
		g.Go(func() error {
			return worker.RunConsumer(ctx, dial, syncWorker.HandleSyncMessage, cfg.SyncInterval)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no sheets mirror available")
	}

	// Recurring expenses run on a ticker, with one pass at startup so a
	// worker that was down on the due day catches up immediately.
	g.Go(func() error {
		if n, err := recurring.ProcessDue(ctx); err != nil {
			logger.Error("Recurring expense pass failed", "error", err)
		} else if n > 0 {
			logger.Info("Recurring expenses materialized", "count", n)
		}

		ticker := time.NewTicker(cfg.RecurringInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := ledg.Load(ctx); err != nil {
					logger.Error("Failed to reload ledger state", "error", err)
					continue
				}
				if n, err := recurring.ProcessDue(ctx); err != nil {
					logger.Error("Recurring expense pass failed", "error", err)
				} else if n > 0 {
					logger.Info("Recurring expenses materialized", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
