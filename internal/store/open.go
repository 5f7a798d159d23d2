package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/fall-event-service/internal/config"
	"github.com/BarkinBalci/fall-event-service/internal/repository"
	"github.com/BarkinBalci/fall-event-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/fall-event-service/internal/repository/postgres"
)

// OpenPrimary connects to the configured primary backend and initializes its schema.
// Any error means the primary stays disabled for the process lifetime.
func OpenPrimary(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.EventRepository, error) {
	if cfg.Storage.PrimaryDSN() == "" {
		return nil, repository.ErrPrimaryDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Storage.PrimaryTimeoutSec)*time.Second)
	defer cancel()

	var repo repository.EventRepository
	switch cfg.Storage.PrimaryDriver {
	case config.DriverClickHouse:
		client, err := clickhouse.NewClient(ctx, &cfg.Storage, &cfg.ClickHouse, log)
		if err != nil {
			return nil, err
		}
		repo = clickhouse.NewRepository(client, cfg.Storage.Collection, log)
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Storage.PrimaryDSN())
		if err != nil {
			return nil, err
		}
		repo = postgres.NewRepository(db, cfg.Storage.Database, cfg.Storage.Collection, log)
	default:
		return nil, fmt.Errorf("unsupported primary driver: %s", cfg.Storage.PrimaryDriver)
	}

	if err := repo.InitSchema(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to initialize primary schema: %w", err)
	}

	log.Info("Primary store connected", zap.String("backend", repo.Name()))
	return repo, nil
}
