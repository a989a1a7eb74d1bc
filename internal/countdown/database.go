package countdown

import "cdt-go/internal/model"

// Database provides an interface for ledger storage operations.
// Implementations must return contributions in arrival order (message ID
// ascending) and treat "not found" lookups as (nil, nil).
type Database interface {
	// Countdown registry

	// CreateCountdown registers a channel as a countdown with the given
	// initial command prefixes.
	CreateCountdown(id, serverID int64, prefixes []string) (*model.Countdown, error)

	// FindCountdown returns a countdown by channel ID, or nil if not registered.
	FindCountdown(id int64) (*model.Countdown, error)

	// ListCountdowns returns all countdowns for a server, or all countdowns
	// when serverID is 0.
	ListCountdowns(serverID int64) ([]*model.Countdown, error)

	// DeleteCountdown removes a countdown and cascades to its contributions,
	// prefixes, and reactions.
	DeleteCountdown(id int64) error

	// SetTimezone updates a countdown's UTC offset (in hours).
	SetTimezone(id int64, offset float64) error

	// SetPrefixes replaces a countdown's command prefixes.
	SetPrefixes(id int64, values []string) error

	// FindPrefixes returns a countdown's command prefixes.
	FindPrefixes(id int64) ([]string, error)

	// SetReactions replaces the custom reactions for a specific number.
	// An empty values slice removes them.
	SetReactions(id int64, number int64, values []string) error

	// FindReactions returns the custom reactions registered for a number.
	FindReactions(id int64, number int64) ([]string, error)

	// FindAllReactions returns every custom reaction for a countdown.
	FindAllReactions(id int64) ([]*model.Reaction, error)

	// Ledger

	// AppendContribution appends an accepted contribution.
	AppendContribution(c *model.Contribution) error

	// LastContribution returns the most recent contribution for a countdown
	// (by arrival order), or nil if the countdown is empty.
	LastContribution(countdownID int64) (*model.Contribution, error)

	// FirstContribution returns the earliest contribution for a countdown,
	// or nil if the countdown is empty. Its value defines the total.
	FirstContribution(countdownID int64) (*model.Contribution, error)

	// AllContributions returns the full contribution history in arrival order.
	AllContributions(countdownID int64) ([]*model.Contribution, error)

	// ClearContributions removes all contributions for a countdown.
	ClearContributions(countdownID int64) error

	// Operation tracking

	// CreateOperation records the start of a mutating application operation.
	CreateOperation(operation string, parameters string) (*model.Operation, error)

	// FinishOperation marks an operation as finished with the given status.
	FinishOperation(id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*model.Operation, error)

	// MaxOperationID returns the highest operation ID, or 0 if none exist.
	MaxOperationID() (int64, error)

	// Maintenance

	// BackupTo creates a complete copy of the database at destPath.
	BackupTo(destPath string) error

	// CheckMigrations verifies the database schema is up-to-date.
	CheckMigrations() error

	// Close closes the database connection.
	Close() error
}
