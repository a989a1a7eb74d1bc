package testutil

import (
	"cdt-go/internal/countdown"
	"cdt-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() countdown.Vault {
	return vault.NewMemoryVault("test-vault")
}
