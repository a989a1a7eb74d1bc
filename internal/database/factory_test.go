package database_test

import (
	"testing"

	"cdt-go/internal/config"
	"cdt-go/internal/database"
)

// openRaw opens a SQLite database file directly, closing it with the test.
func openRaw(t *testing.T, path string) *database.SQLiteDatabase {
	t.Helper()
	db, err := database.NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase(%s) error = %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabaseFromConfig(t *testing.T) {
	t.Run("memory database is migrated and usable", func(t *testing.T) {
		db, err := database.NewDatabaseFromConfig(config.DatabaseConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewDatabaseFromConfig() error = %v", err)
		}
		defer db.Close()

		if err := db.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
		if _, err := db.CreateCountdown(1, 10, nil); err != nil {
			t.Errorf("CreateCountdown() error = %v", err)
		}
	})

	t.Run("sqlite database lives under the data dir", func(t *testing.T) {
		dir := t.TempDir()
		db, err := database.NewDatabaseFromConfig(config.DatabaseConfig{Type: "sqlite", DataDir: dir})
		if err != nil {
			t.Fatalf("NewDatabaseFromConfig() error = %v", err)
		}
		defer db.Close()

		if err := db.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
		if _, err := db.CreateCountdown(1, 10, nil); err != nil {
			t.Errorf("CreateCountdown() error = %v", err)
		}
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		if _, err := database.NewDatabaseFromConfig(config.DatabaseConfig{Type: "postgres"}); err == nil {
			t.Error("expected error for unknown database type")
		}
	})
}
