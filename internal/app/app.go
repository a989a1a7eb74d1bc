package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cdt-go/internal/config"
	"cdt-go/internal/countdown"
	"cdt-go/internal/database"
	"cdt-go/internal/encryption"
	"cdt-go/internal/model"
	"cdt-go/internal/vault"
)

// CdtApp is the application layer between the CLI and the countdown Service.
// It constructs all dependencies from config, exposes high-level operations,
// and manages the DB lifecycle on Close.
type CdtApp struct {
	cfg       *config.Config
	db        countdown.Database
	vault     countdown.Vault
	encryptor countdown.Encryptor
	service   *countdown.Service
	op        *LedgerOperation
	logFile   *os.File
}

// NewCdtApp creates a fully wired CdtApp from the given config.
// operation identifies the CLI command being run (e.g. "Count", "Reload").
// The caller must call Close when done.
func NewCdtApp(cfg *config.Config, operation string) (*CdtApp, error) {
	v, err := vault.NewVaultFromConfig(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// Check the local ledger version against the latest vault snapshot.
	remoteVersion, err := v.GetVersion()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking vault snapshot version: %w", err)
	}

	localMax, err := db.MaxOperationID()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checking local ledger version: %w", err)
	}

	if remoteVersion > localMax {
		db.Close()
		return nil, fmt.Errorf("local ledger is behind the vault (local=%d, vault=%d): restore from a snapshot or re-initialize", localMax, remoteVersion)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc := countdown.NewService(db, v, enc, &slogAdapter{l: logger}, countdown.RealClock{})
	op := NewLedgerOperation(operation, "")

	return &CdtApp{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		service:   svc,
		op:        op,
		logFile:   logFile,
	}, nil
}

// persistOperation saves the ledger operation to the database, giving it an
// auto-increment ID. This should only be called for mutating commands.
func (a *CdtApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting ledger operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// CreateCountdown registers a channel as a countdown. When no prefixes are
// given, the config's default prefixes are used.
func (a *CdtApp) CreateCountdown(id, serverID int64, prefixes []string) error {
	if err := a.persistOperation(fmt.Sprintf("countdown=%d server=%d", id, serverID)); err != nil {
		return err
	}
	if len(prefixes) == 0 {
		prefixes = a.cfg.Prefixes
	}
	return a.service.CreateCountdown(id, serverID, prefixes)
}

// DeleteCountdown removes a countdown and all of its data.
func (a *CdtApp) DeleteCountdown(id int64) error {
	if err := a.persistOperation(fmt.Sprintf("countdown=%d", id)); err != nil {
		return err
	}
	return a.service.DeleteCountdown(id)
}

// ListCountdowns returns registered countdowns, optionally filtered by server.
func (a *CdtApp) ListCountdowns(serverID int64) ([]*model.Countdown, error) {
	return a.service.ListCountdowns(serverID)
}

// Settings returns a countdown's registration, prefixes, and reactions.
func (a *CdtApp) Settings(id int64) (*countdown.CountdownSettings, error) {
	return a.service.Settings(id)
}

// SetTimezone updates a countdown's UTC offset (in hours).
func (a *CdtApp) SetTimezone(id int64, offset float64) error {
	if err := a.persistOperation(fmt.Sprintf("countdown=%d offset=%g", id, offset)); err != nil {
		return err
	}
	return a.service.SetTimezone(id, offset)
}

// SetPrefixes replaces a countdown's command prefixes.
func (a *CdtApp) SetPrefixes(id int64, values []string) error {
	if err := a.persistOperation(fmt.Sprintf("countdown=%d", id)); err != nil {
		return err
	}
	return a.service.SetPrefixes(id, values)
}

// SetReactions replaces the custom reactions for a number. An empty values
// slice removes them.
func (a *CdtApp) SetReactions(id, number int64, values []string) error {
	if err := a.persistOperation(fmt.Sprintf("countdown=%d number=%d", id, number)); err != nil {
		return err
	}
	return a.service.SetReactions(id, number, values)
}

// Count parses the leading number from content and submits it to the
// validator. Returns the parsed value along with the validation result.
func (a *CdtApp) Count(countdownID, messageID, authorID int64, content string, at time.Time) (int64, *countdown.CountResult, error) {
	value, ok := countdown.ParseNumber(content)
	if !ok {
		return 0, nil, fmt.Errorf("message does not start with a number: %q", content)
	}
	if err := a.persistOperation(fmt.Sprintf("countdown=%d message=%d", countdownID, messageID)); err != nil {
		return 0, nil, err
	}
	result, err := a.service.ValidateAndAppend(countdownID, messageID, authorID, value, at)
	if err != nil {
		return 0, nil, err
	}
	return value, result, nil
}

// inboundRecord is the JSON lines wire format for replay files.
type inboundRecord struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Reload reads a JSON lines file of raw messages and replays them through
// the validator, replacing the countdown's ledger. Returns the number of
// accepted contributions.
func (a *CdtApp) Reload(countdownID int64, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening replay file: %w", err)
	}
	defer f.Close()

	var messages []countdown.InboundMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec inboundRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return 0, fmt.Errorf("parsing replay file line %d: %w", line, err)
		}
		messages = append(messages, countdown.InboundMessage{
			ID:        rec.ID,
			AuthorID:  rec.AuthorID,
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
		})
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading replay file: %w", err)
	}

	if err := a.persistOperation(fmt.Sprintf("countdown=%d messages=%d", countdownID, len(messages))); err != nil {
		return 0, err
	}
	return a.service.Reload(countdownID, messages)
}

// Analytics passthroughs. These are read-only and never persist an operation.

func (a *CdtApp) Progress(countdownID int64) (*countdown.ProgressStats, error) {
	return a.service.Progress(countdownID)
}

func (a *CdtApp) ETA(countdownID int64) ([]countdown.ETAPoint, error) {
	return a.service.ETA(countdownID)
}

func (a *CdtApp) Contributors(countdownID int64) ([]*countdown.ContributorStats, error) {
	return a.service.Contributors(countdownID)
}

func (a *CdtApp) ContributorHistory(countdownID int64) ([]countdown.SharePoint, error) {
	return a.service.ContributorHistory(countdownID)
}

func (a *CdtApp) Leaderboard(countdownID int64) ([]*countdown.LeaderboardEntry, error) {
	return a.service.Leaderboard(countdownID)
}

func (a *CdtApp) LeaderboardFor(countdownID, authorID int64) (*countdown.LeaderboardEntry, error) {
	return a.service.LeaderboardFor(countdownID, authorID)
}

func (a *CdtApp) Heatmap(countdownID, authorID int64) ([]countdown.HeatmapCell, error) {
	return a.service.Heatmap(countdownID, authorID)
}

func (a *CdtApp) Speed(countdownID int64, hours int) ([]countdown.SpeedBucket, error) {
	return a.service.Speed(countdownID, hours)
}

// SetupEncryption generates the age key pair protected by the passphrase.
func (a *CdtApp) SetupEncryption(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// SaveSnapshot encrypts a copy of the ledger and uploads it to the vault.
// Returns the snapshot name.
func (a *CdtApp) SaveSnapshot() (string, error) {
	if err := a.persistOperation(""); err != nil {
		return "", err
	}
	return a.service.SaveSnapshot()
}

// ListSnapshots returns the names of all vault snapshots, oldest first.
func (a *CdtApp) ListSnapshots() ([]string, error) {
	return a.service.ListSnapshots()
}

// RestoreSnapshot downloads and decrypts a snapshot to destPath. An empty
// name selects the most recent snapshot. The passphrase unlocks the
// private key.
func (a *CdtApp) RestoreSnapshot(name, passphrase, destPath string) error {
	dec, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}
	return a.service.RestoreSnapshot(name, dec, destPath)
}

// GetHistory returns the most recent ledger operations, newest first.
func (a *CdtApp) GetHistory(limit int) ([]*model.Operation, error) {
	return a.service.GetHistory(limit)
}

// Fail marks the current operation as failed. The status is written to the
// audit log when the app is closed.
func (a *CdtApp) Fail() {
	a.op.Status = "error"
}

// Close finalizes the operation record (if persisted) and closes all resources.
func (a *CdtApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing ledger operation: %w", err)
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
