package testutil

import (
	"cdt-go/internal/countdown"
	"cdt-go/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() countdown.Encryptor {
	return encryption.NewTestEncryptor()
}
