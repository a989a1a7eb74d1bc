package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cdt-go/internal/countdown"
	"cdt-go/internal/database/migrations"
	"cdt-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the countdown.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite database connection.
// Exported for tools and tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps writers serialized and makes ":memory:"
	// behave as one database instead of one per pooled connection.
	db.SetMaxOpenConns(1)

	// Foreign keys drive the delete cascade from countdowns to their
	// contributions, prefixes, and reactions (SQLite default is OFF).
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Countdown registry operations

func (s *SQLiteDatabase) CreateCountdown(id, serverID int64, prefixes []string) (*model.Countdown, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	cd := &model.Countdown{
		ID:        id,
		ServerID:  serverID,
		Timezone:  0,
		CreatedAt: time.Now(),
	}
	_, err = tx.Exec(
		"INSERT INTO countdowns (id, server_id, timezone, created_at) VALUES (?, ?, ?, ?)",
		cd.ID, cd.ServerID, cd.Timezone, cd.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting countdown: %w", err)
	}

	for _, value := range prefixes {
		_, err = tx.Exec(
			"INSERT INTO prefixes (id, countdown_id, value) VALUES (?, ?, ?)",
			uuid.New().String(), id, value,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting prefix: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return cd, nil
}

func (s *SQLiteDatabase) FindCountdown(id int64) (*model.Countdown, error) {
	var cd model.Countdown
	err := s.db.QueryRow(
		"SELECT id, server_id, timezone, created_at FROM countdowns WHERE id = ?", id,
	).Scan(&cd.ID, &cd.ServerID, &cd.Timezone, &cd.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding countdown: %w", err)
	}
	return &cd, nil
}

func (s *SQLiteDatabase) ListCountdowns(serverID int64) ([]*model.Countdown, error) {
	query := "SELECT id, server_id, timezone, created_at FROM countdowns ORDER BY id"
	args := []any{}
	if serverID != 0 {
		query = "SELECT id, server_id, timezone, created_at FROM countdowns WHERE server_id = ? ORDER BY id"
		args = append(args, serverID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing countdowns: %w", err)
	}
	defer rows.Close()

	var result []*model.Countdown
	for rows.Next() {
		var cd model.Countdown
		if err := rows.Scan(&cd.ID, &cd.ServerID, &cd.Timezone, &cd.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning countdown: %w", err)
		}
		result = append(result, &cd)
	}
	return result, rows.Err()
}

func (s *SQLiteDatabase) DeleteCountdown(id int64) error {
	// Foreign key cascade removes contributions, prefixes, and reactions.
	if _, err := s.db.Exec("DELETE FROM countdowns WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting countdown: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) SetTimezone(id int64, offset float64) error {
	if _, err := s.db.Exec("UPDATE countdowns SET timezone = ? WHERE id = ?", offset, id); err != nil {
		return fmt.Errorf("setting timezone: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) SetPrefixes(id int64, values []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM prefixes WHERE countdown_id = ?", id); err != nil {
		return fmt.Errorf("clearing prefixes: %w", err)
	}
	for _, value := range values {
		_, err := tx.Exec(
			"INSERT INTO prefixes (id, countdown_id, value) VALUES (?, ?, ?)",
			uuid.New().String(), id, value,
		)
		if err != nil {
			return fmt.Errorf("inserting prefix: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindPrefixes(id int64) ([]string, error) {
	rows, err := s.db.Query("SELECT value FROM prefixes WHERE countdown_id = ? ORDER BY value", id)
	if err != nil {
		return nil, fmt.Errorf("finding prefixes: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scanning prefix: %w", err)
		}
		result = append(result, value)
	}
	return result, rows.Err()
}

func (s *SQLiteDatabase) SetReactions(id int64, number int64, values []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM reactions WHERE countdown_id = ? AND number = ?", id, number)
	if err != nil {
		return fmt.Errorf("clearing reactions: %w", err)
	}
	for _, value := range values {
		_, err := tx.Exec(
			"INSERT INTO reactions (id, countdown_id, number, value) VALUES (?, ?, ?, ?)",
			uuid.New().String(), id, number, value,
		)
		if err != nil {
			return fmt.Errorf("inserting reaction: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindReactions(id int64, number int64) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT value FROM reactions WHERE countdown_id = ? AND number = ? ORDER BY value",
		id, number,
	)
	if err != nil {
		return nil, fmt.Errorf("finding reactions: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		result = append(result, value)
	}
	return result, rows.Err()
}

func (s *SQLiteDatabase) FindAllReactions(id int64) ([]*model.Reaction, error) {
	rows, err := s.db.Query(
		"SELECT id, countdown_id, number, value FROM reactions WHERE countdown_id = ? ORDER BY number DESC, value",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("finding reactions: %w", err)
	}
	defer rows.Close()

	var result []*model.Reaction
	for rows.Next() {
		var r model.Reaction
		if err := rows.Scan(&r.ID, &r.CountdownID, &r.Number, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning reaction: %w", err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

// Ledger operations

func (s *SQLiteDatabase) AppendContribution(c *model.Contribution) error {
	_, err := s.db.Exec(
		"INSERT INTO contributions (id, countdown_id, author_id, value, timestamp) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.CountdownID, c.AuthorID, c.Value, c.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("appending contribution: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) LastContribution(countdownID int64) (*model.Contribution, error) {
	return s.edgeContribution(countdownID, "DESC")
}

func (s *SQLiteDatabase) FirstContribution(countdownID int64) (*model.Contribution, error) {
	return s.edgeContribution(countdownID, "ASC")
}

// edgeContribution reads the first or last contribution by arrival order
// as a single indexed lookup.
func (s *SQLiteDatabase) edgeContribution(countdownID int64, order string) (*model.Contribution, error) {
	var c model.Contribution
	err := s.db.QueryRow(
		"SELECT id, countdown_id, author_id, value, timestamp FROM contributions WHERE countdown_id = ? ORDER BY id "+order+" LIMIT 1",
		countdownID,
	).Scan(&c.ID, &c.CountdownID, &c.AuthorID, &c.Value, &c.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Empty countdown
		}
		return nil, fmt.Errorf("reading contribution: %w", err)
	}
	return &c, nil
}

func (s *SQLiteDatabase) AllContributions(countdownID int64) ([]*model.Contribution, error) {
	rows, err := s.db.Query(
		"SELECT id, countdown_id, author_id, value, timestamp FROM contributions WHERE countdown_id = ? ORDER BY id",
		countdownID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading contributions: %w", err)
	}
	defer rows.Close()

	var result []*model.Contribution
	for rows.Next() {
		var c model.Contribution
		if err := rows.Scan(&c.ID, &c.CountdownID, &c.AuthorID, &c.Value, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning contribution: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (s *SQLiteDatabase) ClearContributions(countdownID int64) error {
	if _, err := s.db.Exec("DELETE FROM contributions WHERE countdown_id = ?", countdownID); err != nil {
		return fmt.Errorf("clearing contributions: %w", err)
	}
	return nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*model.Operation, error) {
	op := &model.Operation{
		StartedAt:  time.Now(),
		Operation:  operation,
		Parameters: parameters,
	}
	result, err := s.db.Exec(
		"INSERT INTO operations (started_at, operation, parameters) VALUES (?, ?, ?)",
		op.StartedAt, op.Operation, op.Parameters,
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	op.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation ID: %w", err)
	}
	return op, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	_, err := s.db.Exec(
		"UPDATE operations SET finished_at = ?, status = ? WHERE id = ?",
		time.Now(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*model.Operation, error) {
	rows, err := s.db.Query(
		"SELECT id, started_at, finished_at, operation, parameters, status FROM operations ORDER BY id DESC LIMIT ?",
		int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var result []*model.Operation
	for rows.Next() {
		var op model.Operation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.StartedAt, &finished, &op.Operation, &op.Parameters, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		result = append(result, &op)
	}
	return result, rows.Err()
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM operations").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reading max operation ID: %w", err)
	}
	return id, nil
}

// Maintenance

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements countdown.Database
var _ countdown.Database = (*SQLiteDatabase)(nil)
