// Package database opens the long-lived database handles owned by main.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/isdelr/storefront-be/internal/config"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/isdelr/storefront-be/internal/repository/mongostore"
	"github.com/isdelr/storefront-be/internal/repository/sqlitestore"
	"github.com/rs/zerolog/log"
)

// Open connects to the configured driver, prepares the schema and returns the
// repository bundle. The caller owns the handle and must call Stores.Close.
func Open(ctx context.Context, cfg *config.Config) (repository.Stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return repository.Stores{}, err
		}
		if err := sqlitestore.Migrate(ctx, db); err != nil {
			db.Close()
			return repository.Stores{}, fmt.Errorf("apply sqlite schema: %w", err)
		}
		log.Info().Str("path", cfg.DatabasePath).Msg("Using SQLite database")
		return sqlitestore.New(db), nil

	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return repository.Stores{}, err
		}
		db := client.Database(cfg.MongoDatabase)
		indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := mongostore.EnsureIndexes(indexCtx, db); err != nil {
			_ = client.Disconnect(ctx)
			return repository.Stores{}, err
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("Using MongoDB database")
		return mongostore.New(db), nil

	default:
		return repository.Stores{}, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// OpenSQLite opens (or creates) a SQLite database and makes sure its directory exists.
func OpenSQLite(path string) (*sql.DB, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// A single connection serialises writers and keeps in-memory databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}
