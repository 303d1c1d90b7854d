package driven

import (
	"context"
	"errors"
)

// SessionSlot is the single named slot the session credential lives under.
const SessionSlot = "session"

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// COPRO_CREDENTIAL_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set COPRO_CREDENTIAL_KEY")

// CredentialStore defines the driven port for encrypted credential
// persistence. The adapter layer owns encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the credential in the given slot.
	// Returns ErrEncryptionKeyNotSet if the adapter was constructed without
	// an encryption key.
	Set(ctx context.Context, slot, plaintext string) error

	// Get retrieves the plaintext credential for the given slot.
	// Returns ("", nil) if the slot is empty.
	// Returns ErrEncryptionKeyNotSet if the adapter was constructed without
	// an encryption key.
	Get(ctx context.Context, slot string) (string, error)

	// Delete clears the given slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, slot string) error
}
