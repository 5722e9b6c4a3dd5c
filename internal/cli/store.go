package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/logger"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/store/cache"
	"github.com/tgienger/kanban/internal/store/postgres"
	"github.com/tgienger/kanban/internal/store/tables"
)

// OpenStore opens the configured driver, wrapped in the redis cache when
// one is configured.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Client, error) {
	base, err := openDriver(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled() {
		return base, nil
	}
	namespace, err := cacheNamespace(cfg.Store)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	rc, err := cache.Connect(cfg.Cache.URL)
	if err != nil {
		_ = base.Close()
		return nil, fmt.Errorf("invalid cache url: %w", err)
	}
	return cache.New(base, rc, cfg.Cache.TTLDuration(), namespace, cache.WithLogger(logger.Default())), nil
}

func openDriver(ctx context.Context, cfg config.StoreConfig) (store.Client, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		database, err := db.New(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("error initializing database: %w", err)
		}
		return database, nil
	case config.DriverPostgres:
		return postgres.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.Migrate)
	case config.DriverTables:
		return tables.New(ctx, cfg.Tables.ConnectionString, cfg.Tables.Table, cfg.Tables.Partition)
	case config.DriverMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// cacheNamespace names the backing store so boards sharing a redis
// instance never read each other's lists.
func cacheNamespace(cfg config.StoreConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			p, err := db.DefaultPath()
			if err != nil {
				return "", err
			}
			path = p
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return cfg.Driver + ":" + abs, nil
	case config.DriverPostgres:
		pg, err := pgconn.ParseConfig(cfg.Postgres.DSN)
		if err != nil {
			return cfg.Driver + ":" + digest(cfg.Postgres.DSN), nil
		}
		return fmt.Sprintf("%s:%s:%d/%s", cfg.Driver, pg.Host, pg.Port, pg.Database), nil
	case config.DriverTables:
		return cfg.Driver + ":" + digest(cfg.Tables.ConnectionString) + ":" + cfg.Tables.Table + ":" + cfg.Tables.Partition, nil
	default:
		// An in-memory board lives only in this process.
		return cfg.Driver + ":" + uuid.NewString(), nil
	}
}

// digest shortens a secret-bearing connection string to a stable key part.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
