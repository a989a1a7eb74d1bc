package countdown

import "io"

// Vault provides an interface for storing encrypted ledger snapshots.
type Vault interface {
	// PutSnapshot stores a snapshot under the given name.
	// The operation is idempotent: storing the same name twice is safe.
	PutSnapshot(name string, r io.Reader, size int64) error

	// GetSnapshot retrieves a snapshot by name and writes it to w.
	GetSnapshot(name string, w io.Writer) error

	// ListSnapshots returns all snapshot names, oldest first.
	ListSnapshots() ([]string, error)

	// PutVersion records the ledger version the latest snapshot was taken at.
	PutVersion(version int64) error

	// GetVersion returns the recorded ledger version, or 0 if none exists.
	GetVersion() (int64, error)

	// ValidateSetup verifies that the vault backend is accessible.
	ValidateSetup() error
}
