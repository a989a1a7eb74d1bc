package encryption_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"cdt-go/internal/config"
	"cdt-go/internal/encryption"
)

func TestTestEncryptor(t *testing.T) {
	enc := encryption.NewTestEncryptor()
	plaintext := "ledger database bytes"

	var cipher bytes.Buffer
	if err := enc.Encrypt(strings.NewReader(plaintext), &cipher); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if cipher.String() == plaintext {
		t.Error("ciphertext equals plaintext")
	}

	dec, err := enc.Unlock("any passphrase")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	var plain bytes.Buffer
	if err := dec.Decrypt(bytes.NewReader(cipher.Bytes()), &plain); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if plain.String() != plaintext {
		t.Errorf("Decrypt() = %q, want %q", plain.String(), plaintext)
	}
}

func TestTestEncryptor_RejectsForeignData(t *testing.T) {
	enc := encryption.NewTestEncryptor()
	dec, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	var out bytes.Buffer
	if err := dec.Decrypt(strings.NewReader("not an encrypted payload"), &out); err == nil {
		t.Error("expected error for data without the test header")
	}
}

func TestAgeEncryptor(t *testing.T) {
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "cdt.pub"),
		PrivateKeyPath: filepath.Join(dir, "cdt.key"),
	}
	enc := encryption.NewAgeEncryptor(cfg)

	if err := enc.Setup("correct horse"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	plaintext := "ledger database bytes"
	var cipher bytes.Buffer
	if err := enc.Encrypt(strings.NewReader(plaintext), &cipher); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	t.Run("round trips with the right passphrase", func(t *testing.T) {
		dec, err := enc.Unlock("correct horse")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		var plain bytes.Buffer
		if err := dec.Decrypt(bytes.NewReader(cipher.Bytes()), &plain); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if plain.String() != plaintext {
			t.Errorf("Decrypt() = %q, want %q", plain.String(), plaintext)
		}
	})

	t.Run("rejects the wrong passphrase", func(t *testing.T) {
		if _, err := enc.Unlock("wrong"); err == nil {
			t.Error("expected error unlocking with the wrong passphrase")
		}
	})
}

func TestAgeEncryptor_MissingKeys(t *testing.T) {
	enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(t.TempDir(), "nope.pub"),
		PrivateKeyPath: filepath.Join(t.TempDir(), "nope.key"),
	})

	var out bytes.Buffer
	if err := enc.Encrypt(strings.NewReader("x"), &out); err == nil {
		t.Error("expected error encrypting without a public key")
	}
	if _, err := enc.Unlock("pw"); err == nil {
		t.Error("expected error unlocking without a private key")
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		typ     string
		wantErr bool
	}{
		{"age", false},
		{"", false},
		{"test", false},
		{"rot13", true},
	}
	for _, tt := range tests {
		_, err := encryption.NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
		if (err != nil) != tt.wantErr {
			t.Errorf("NewEncryptorFromConfig(%q) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
		}
	}
}
