package application

import (
	"context"

	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// AuthService is the session gateway: it performs the login and MFA
// verification exchanges with the backend and hands accepted credentials to
// the SessionManager.
type AuthService struct {
	client  driven.BackendClient
	session *SessionManager
}

// NewAuthService creates an AuthService.
func NewAuthService(client driven.BackendClient, session *SessionManager) *AuthService {
	return &AuthService{client: client, session: session}
}

// Login exchanges credentials with the backend. Three outcomes: the session
// is opened with a locally validated credential, an MFA challenge is
// returned with the masked contact hint, or a classified error. A backend
// token that fails local validity checking is never stored and surfaces as
// an invalid-credentials failure.
func (s *AuthService) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	token, result, err := s.client.Login(ctx, username, password)
	if err != nil {
		return model.LoginResult{}, err
	}

	if result.MFARequired {
		return result, nil
	}

	if token == "" {
		return model.LoginResult{}, model.NewAppError(model.ErrInvalidCredentials, "Sign-in failed. Please try again.")
	}

	if err := s.session.SetToken(ctx, token); err != nil {
		return model.LoginResult{}, err
	}

	result.Authenticated = true
	return result, nil
}

// VerifyMFA exchanges a 6-digit code for a credential and opens the session.
// On failure no state is mutated.
func (s *AuthService) VerifyMFA(ctx context.Context, username, code string) error {
	token, err := s.client.VerifyMFA(ctx, username, code)
	if err != nil {
		return err
	}
	return s.session.SetToken(ctx, token)
}

// Logout clears the session. userInitiated distinguishes an explicit logout
// from a forced one; only the latter publishes a session-expired reason.
func (s *AuthService) Logout(ctx context.Context, userInitiated bool) {
	reason := model.ClearSessionExpired
	if userInitiated {
		reason = model.ClearUserInitiated
	}
	s.session.Clear(ctx, reason)
}
