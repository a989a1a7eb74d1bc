package vault_test

import (
	"bytes"
	"strings"
	"testing"

	"cdt-go/internal/config"
	"cdt-go/internal/countdown"
	"cdt-go/internal/vault"
)

// newVaults returns one vault of each local flavor so shared behavior is
// exercised against both implementations.
func newVaults(t *testing.T) map[string]countdown.Vault {
	t.Helper()
	fsv, err := vault.NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	return map[string]countdown.Vault{
		"filesystem": fsv,
		"memory":     vault.NewMemoryVault("test"),
	}
}

func TestVault_SnapshotRoundTrip(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			data := "encrypted snapshot bytes"
			err := v.PutSnapshot("20240101T000000Z.db.age", strings.NewReader(data), int64(len(data)))
			if err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}

			var buf bytes.Buffer
			if err := v.GetSnapshot("20240101T000000Z.db.age", &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if buf.String() != data {
				t.Errorf("GetSnapshot() = %q, want %q", buf.String(), data)
			}
		})
	}
}

func TestVault_PutSnapshotIdempotent(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			data := "snapshot"
			for i := 0; i < 2; i++ {
				err := v.PutSnapshot("a.db.age", strings.NewReader(data), int64(len(data)))
				if err != nil {
					t.Fatalf("PutSnapshot() attempt %d error = %v", i+1, err)
				}
			}
			names, err := v.ListSnapshots()
			if err != nil {
				t.Fatalf("ListSnapshots() error = %v", err)
			}
			if len(names) != 1 {
				t.Errorf("ListSnapshots() = %v, want 1 entry", names)
			}
		})
	}
}

func TestVault_PutSnapshotSizeMismatch(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			err := v.PutSnapshot("bad.db.age", strings.NewReader("short"), 999)
			if err == nil {
				t.Error("expected size mismatch error")
			}
		})
	}
}

func TestVault_GetSnapshotMissing(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := v.GetSnapshot("missing.db.age", &buf); err == nil {
				t.Error("expected error for missing snapshot")
			}
		})
	}
}

func TestVault_ListSnapshotsOrdered(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"20240103T000000Z.db.age", "20240101T000000Z.db.age", "20240102T000000Z.db.age"} {
				if err := v.PutSnapshot(n, strings.NewReader("x"), 1); err != nil {
					t.Fatalf("PutSnapshot(%s) error = %v", n, err)
				}
			}
			names, err := v.ListSnapshots()
			if err != nil {
				t.Fatalf("ListSnapshots() error = %v", err)
			}
			want := []string{"20240101T000000Z.db.age", "20240102T000000Z.db.age", "20240103T000000Z.db.age"}
			for i := range want {
				if names[i] != want[i] {
					t.Errorf("names = %v, want %v", names, want)
					break
				}
			}
		})
	}
}

func TestVault_Version(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			version, err := v.GetVersion()
			if err != nil {
				t.Fatalf("GetVersion() error = %v", err)
			}
			if version != 0 {
				t.Errorf("GetVersion() = %d, want 0 before any snapshot", version)
			}

			if err := v.PutVersion(17); err != nil {
				t.Fatalf("PutVersion() error = %v", err)
			}
			version, err = v.GetVersion()
			if err != nil {
				t.Fatalf("GetVersion() error = %v", err)
			}
			if version != 17 {
				t.Errorf("GetVersion() = %d, want 17", version)
			}
		})
	}
}

func TestVault_ValidateSetup(t *testing.T) {
	for name, v := range newVaults(t) {
		t.Run(name, func(t *testing.T) {
			if err := v.ValidateSetup(); err != nil {
				t.Errorf("ValidateSetup() error = %v", err)
			}
		})
	}
}

func TestNewVaultFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		v, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "memory", Name: "m"})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*vault.MemoryVault); !ok {
			t.Errorf("got %T, want *MemoryVault", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := vault.NewVaultFromConfig(config.VaultConfig{
			Type: "filesystem", Name: "f", FSVaultRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("NewVaultFromConfig() error = %v", err)
		}
		if _, ok := v.(*vault.FileSystemVault); !ok {
			t.Errorf("got %T, want *FileSystemVault", v)
		}
	})

	t.Run("filesystem requires root", func(t *testing.T) {
		if _, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "filesystem"}); err == nil {
			t.Error("expected error for missing fs_vault_root")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := vault.NewVaultFromConfig(config.VaultConfig{Type: "ftp"}); err == nil {
			t.Error("expected error for unknown vault type")
		}
	})
}
