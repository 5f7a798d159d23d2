package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/backfill"
	"github.com/BarkinBalci/fall-event-service/internal/clock"
	"github.com/BarkinBalci/fall-event-service/internal/config"
	"github.com/BarkinBalci/fall-event-service/internal/logger"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
	"github.com/BarkinBalci/fall-event-service/internal/repository/flatfile"
	"github.com/BarkinBalci/fall-event-service/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "fall-event-backfill")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	if err := run(cfg, log); err != nil {
		log.Error("Backfill failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := clock.New(cfg.Service.Timezone)
	if err != nil {
		return err
	}

	file, err := flatfile.Open(cfg.Storage.FallbackFile)
	if err != nil {
		return err
	}

	repo, err := store.OpenPrimary(ctx, cfg, log)
	if errors.Is(err, repository.ErrPrimaryDisabled) {
		return fmt.Errorf("no primary store configured, set PRIMARY_URI or MONGO_URI")
	}
	if err != nil {
		return fmt.Errorf("failed to connect to primary store: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Error("Failed to close primary store", zap.Error(err))
		}
	}()

	log.Info("Starting backfill",
		zap.String("source", file.Path()),
		zap.String("target", repo.Name()),
		zap.Int("batch_size", cfg.Backfill.BatchSize))

	summary, err := backfill.NewBackfiller(cfg, file, repo, c, log).Run(ctx)

	log.Info("Backfill finished",
		zap.Int("read", summary.Read),
		zap.Int("parsed", summary.Parsed),
		zap.Int("written", summary.Written),
		zap.Int("failed", summary.Failed))

	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d rows were not written", summary.Failed)
	}
	return nil
}
