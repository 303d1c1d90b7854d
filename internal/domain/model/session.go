package model

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryMargin is subtracted from a credential's expiration when judging
// validity. A credential is usable only while now < expiration - margin, so
// requests never race the real expiry on the backend side.
const ExpiryMargin = 5 * time.Minute

// ErrMalformedCredential is returned when a token cannot be decoded or
// carries no expiration claim.
var ErrMalformedCredential = errors.New("malformed credential")

// Credential is the session credential: the opaque signed token as issued by
// the backend plus the expiration extracted from its claims. The panel never
// verifies the signature; only the backend holds the signing key.
type Credential struct {
	Raw       string
	ExpiresAt time.Time
}

// ValidAt reports whether the credential is still usable at the given
// instant. A credential exactly at the margin boundary is invalid.
func (c Credential) ValidAt(now time.Time) bool {
	return now.Before(c.ExpiresAt.Add(-ExpiryMargin))
}

// ParseCredential decodes a raw token without signature verification and
// extracts its expiration. Tokens that do not decode, or that decode without
// an exp claim, are rejected as malformed.
func ParseCredential(raw string) (Credential, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Credential{}, ErrMalformedCredential
	}
	if claims.ExpiresAt == nil {
		return Credential{}, ErrMalformedCredential
	}
	return Credential{Raw: raw, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ClearReason distinguishes a user-initiated logout from a forced one.
type ClearReason string

const (
	ClearUserInitiated  ClearReason = "user_initiated"
	ClearSessionExpired ClearReason = "session_expired"
)

// LoginResult is the outcome of a login exchange. Exactly one of the two
// shapes is populated: Authenticated true after a stored credential, or
// MFARequired true with the masked contact hint when the backend demands a
// second factor before issuing a token.
type LoginResult struct {
	Authenticated bool
	MFARequired   bool
	MaskedEmail   string
	Message       string
}
