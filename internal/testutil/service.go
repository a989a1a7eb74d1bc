package testutil

import (
	"testing"

	"cdt-go/internal/countdown"
)

// NewTestService creates a Service wired with an in-memory database, an
// in-memory vault, a test encryptor, a nop logger, and the given clock.
func NewTestService(t *testing.T, clock countdown.Clock) *countdown.Service {
	t.Helper()
	return countdown.NewService(NewTestDatabase(t), NewTestVault(), NewTestEncryptor(), &countdown.NopLogger{}, clock)
}
