package countdown_test

import (
	"path/filepath"
	"testing"
	"time"

	"cdt-go/internal/database"
	"cdt-go/internal/testutil"
)

func TestSnapshotRoundTrip(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	countdownFrom(t, svc, 5, 0)

	name, err := svc.SaveSnapshot()
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if name != "20240115T103000Z.db.age" {
		t.Errorf("name = %q, want clock-derived name", name)
	}

	names, err := svc.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(names) != 1 || names[0] != name {
		t.Errorf("ListSnapshots() = %v, want [%s]", names, name)
	}

	// Restore by explicit name and reopen the plaintext copy.
	dec, err := testutil.NewTestEncryptor().Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	destPath := filepath.Join(t.TempDir(), "restored.db")
	if err := svc.RestoreSnapshot(name, dec, destPath); err != nil {
		t.Fatalf("RestoreSnapshot() error = %v", err)
	}

	restored, err := database.NewSQLiteDatabase(destPath)
	if err != nil {
		t.Fatalf("opening restored database: %v", err)
	}
	defer restored.Close()

	cd, err := restored.FindCountdown(1)
	if err != nil {
		t.Fatalf("FindCountdown() error = %v", err)
	}
	if cd == nil {
		t.Fatal("restored database is missing the countdown")
	}
	msgs, err := restored.AllContributions(1)
	if err != nil {
		t.Fatalf("AllContributions() error = %v", err)
	}
	if len(msgs) != 6 {
		t.Errorf("restored contributions = %d, want 6", len(msgs))
	}
}

func TestRestoreSnapshot_LatestByDefault(t *testing.T) {
	clock := testutil.FixedClock()
	svc := testutil.NewTestService(t, clock)
	countdownFrom(t, svc, 2, 0)

	if _, err := svc.SaveSnapshot(); err != nil {
		t.Fatalf("first SaveSnapshot() error = %v", err)
	}
	clock.Advance(time.Minute) // distinct name for the second snapshot
	name2, err := svc.SaveSnapshot()
	if err != nil {
		t.Fatalf("second SaveSnapshot() error = %v", err)
	}

	dec, err := testutil.NewTestEncryptor().Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	destPath := filepath.Join(t.TempDir(), "restored.db")
	if err := svc.RestoreSnapshot("", dec, destPath); err != nil {
		t.Fatalf("RestoreSnapshot() error = %v", err)
	}

	names, err := svc.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if names[len(names)-1] != name2 {
		t.Errorf("latest snapshot = %q, want %q", names[len(names)-1], name2)
	}
}

func TestRestoreSnapshot_EmptyVault(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	dec, err := testutil.NewTestEncryptor().Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := svc.RestoreSnapshot("", dec, filepath.Join(t.TempDir(), "out.db")); err == nil {
		t.Error("expected error restoring from an empty vault")
	}
}
