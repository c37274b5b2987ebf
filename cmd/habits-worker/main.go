package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"habits/internal/amqp"
	"habits/internal/cli"
	"habits/internal/store/firestore"
	"habits/internal/worker"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	logger.Info("Starting habits-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// SQLite holds the local queue of rows awaiting sync.
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// Firestore is the remote replica (optional; without it the worker
	// only drains delete messages for rows that never reached the remote).
	var remote *firestore.Client
	if cfg.FirestoreProjectID != "" {
		var err error
		remote, err = firestore.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Firestore client", "error", err)
			os.Exit(1)
		}
		logger.Info("Firestore client initialized", "project_id", cfg.FirestoreProjectID, "collection", cfg.FirestoreCollection)
	} else {
		logger.Info("Firestore disabled - no FIRESTORE_PROJECT_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if remote == nil {
		logger.Info("Skipping sync operations - no remote client available")
		<-ctx.Done()
		return
	}

	syncWorker := worker.NewSyncWorker(sqliteRepo, remote, remote, cfg.SyncBatchSize)

	// On startup, settle any rows that were left pending while the worker
	// was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeMessages(gctx, func(msg *amqp.SyncMessage) error {
			return syncWorker.HandleMessage(gctx, msg)
		})
	})

	// Periodic sweep for messages the broker never delivered.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
