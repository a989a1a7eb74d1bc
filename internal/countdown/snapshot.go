package countdown

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveSnapshot copies the ledger database, encrypts it, and uploads it to
// the vault together with a version marker (the highest operation ID at
// the time of the copy). Returns the snapshot name.
//
// The database copy is made first and encrypted to a local temp file, so
// the vault upload knows the ciphertext size up front. Orphaned temp files
// are removed on every exit path.
func (s *Service) SaveSnapshot() (string, error) {
	version, err := s.database.MaxOperationID()
	if err != nil {
		return "", fmt.Errorf("reading ledger version: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "cdt-snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plainPath := filepath.Join(tmpDir, "ledger.db")
	if err := s.database.BackupTo(plainPath); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}

	cipherPath := filepath.Join(tmpDir, "ledger.db.age")
	if err := s.encryptFile(plainPath, cipherPath); err != nil {
		return "", err
	}

	cipher, err := os.Open(cipherPath)
	if err != nil {
		return "", fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer cipher.Close()

	info, err := cipher.Stat()
	if err != nil {
		return "", fmt.Errorf("reading snapshot size: %w", err)
	}

	name := s.clock.Now().UTC().Format("20060102T150405Z") + ".db.age"
	if err := s.vault.PutSnapshot(name, cipher, info.Size()); err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}
	if err := s.vault.PutVersion(version); err != nil {
		return "", fmt.Errorf("recording snapshot version: %w", err)
	}

	s.logger.Info("snapshot saved", "name", name, "version", version)
	return name, nil
}

func (s *Service) encryptFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening database copy: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	defer dest.Close()

	if err := s.encryptor.Encrypt(src, dest); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return dest.Close()
}

// ListSnapshots returns the snapshot names stored in the vault, oldest first.
func (s *Service) ListSnapshots() ([]string, error) {
	return s.vault.ListSnapshots()
}

// RestoreSnapshot downloads a snapshot from the vault, decrypts it with an
// unlocked key, and writes the plaintext database to destPath. An empty
// name restores the most recent snapshot.
func (s *Service) RestoreSnapshot(name string, dec DecryptionContext, destPath string) error {
	if name == "" {
		names, err := s.vault.ListSnapshots()
		if err != nil {
			return fmt.Errorf("listing snapshots: %w", err)
		}
		if len(names) == 0 {
			return fmt.Errorf("vault has no snapshots")
		}
		name = names[len(names)-1]
	}

	tmpDir, err := os.MkdirTemp("", "cdt-restore-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	cipherPath := filepath.Join(tmpDir, "snapshot.age")
	cipher, err := os.Create(cipherPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	if err := s.vault.GetSnapshot(name, cipher); err != nil {
		cipher.Close()
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := cipher.Close(); err != nil {
		return fmt.Errorf("finalizing download: %w", err)
	}

	src, err := os.Open(cipherPath)
	if err != nil {
		return fmt.Errorf("opening downloaded snapshot: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating restored database: %w", err)
	}
	defer dest.Close()

	if err := dec.Decrypt(src, dest); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("finalizing restored database: %w", err)
	}

	s.logger.Info("snapshot restored", "name", name, "dest", destPath)
	return nil
}
