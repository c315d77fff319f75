package store

import (
	"context"
	"fmt"
	"log/slog"

	"chatterhub/internal/config"
	"chatterhub/internal/domain/repositories"
	"chatterhub/internal/repository/memory"
	"chatterhub/internal/repository/postgres"
	"chatterhub/internal/repository/sqlite"
)

// Open builds the store for the configured driver
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	tables := repositories.NewTableNames(cfg.TablePrefix)

	switch cfg.DBDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return New(memory.NewDriver(), logger), nil

	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		driver, err := postgres.NewDriver(ctx, &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", "driver", cfg.DBDriver, "table_prefix", cfg.TablePrefix)
		return New(driver, logger), nil

	case config.DriverSQLite:
		driver, err := sqlite.Open(ctx, cfg.SQLitePath, tables, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "driver", cfg.DBDriver, "path", cfg.SQLitePath)
		return New(driver, logger), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}
