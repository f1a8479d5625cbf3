// Package provider opens the storage.Driver named by the configuration.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/papercomputeco/ndbprep/pkg/config"
	"github.com/papercomputeco/ndbprep/pkg/storage"
	"github.com/papercomputeco/ndbprep/pkg/storage/inmemory"
	"github.com/papercomputeco/ndbprep/pkg/storage/mongo"
	"github.com/papercomputeco/ndbprep/pkg/storage/postgres"
	"github.com/papercomputeco/ndbprep/pkg/storage/sqlite"
)

// New opens the driver selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (storage.Driver, error) {
	switch cfg.Provider {
	case config.ProviderSQLite, "":
		d, err := sqlite.NewDriver(ctx, cfg.SQLitePath, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		return d, nil

	case config.ProviderPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("storage provider %q needs a connection string (--postgres)", cfg.Provider)
		}
		d, err := postgres.NewDriver(ctx, cfg.PostgresDSN, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		return d, nil

	case config.ProviderMongo:
		d, err := mongo.NewDriver(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Collection)
		if err != nil {
			return nil, fmt.Errorf("failed to create MongoDB driver: %w", err)
		}
		return d, nil

	case config.ProviderMemory:
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q (available: %s)",
			cfg.Provider, strings.Join(config.Providers, ", "))
	}
}

// Describe returns a short human readable target for logs.
func Describe(cfg config.StorageConfig) string {
	switch cfg.Provider {
	case config.ProviderPostgres:
		return "postgres table " + cfg.Collection
	case config.ProviderMongo:
		return fmt.Sprintf("mongo %s.%s", cfg.MongoDatabase, cfg.Collection)
	case config.ProviderMemory:
		return "in-memory store"
	default:
		return fmt.Sprintf("sqlite %s (table %s)", cfg.SQLitePath, cfg.Collection)
	}
}
