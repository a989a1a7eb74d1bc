package database

import (
	"fmt"
	"os"
	"path/filepath"

	"cdt-go/internal/config"
	"cdt-go/internal/countdown"
	"cdt-go/internal/database/migrations"
)

// NewDatabaseFromConfig creates a Database implementation based on the database config type.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (countdown.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err := NewSQLiteDatabase(filepath.Join(cfg.DataDir, "ledger.db"))
		if err != nil {
			return nil, err
		}
		// Migrating up is a no-op on a current schema, so a fresh ledger
		// gets created and an existing one is brought up to date.
		if err := migrations.MigrateUp(db.db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return db, nil
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		// An in-memory database starts empty every run, so migrate it now.
		if err := migrations.MigrateUp(db.db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
