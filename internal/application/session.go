// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// DefaultMonitorInterval is the cadence of the expiry monitor. It is far
// smaller than the validity margin, so expiry is always caught before the
// margin is exhausted.
const DefaultMonitorInterval = time.Minute

// SessionEventKind labels a session state transition.
type SessionEventKind int

const (
	// SessionOpened fires after a credential has been stored.
	SessionOpened SessionEventKind = iota
	// SessionClosed fires after the credential has been cleared; the event's
	// Reason tells a user-initiated logout apart from a detected expiry.
	SessionClosed
)

// SessionEvent is one session state transition.
type SessionEvent struct {
	Kind   SessionEventKind
	Reason model.ClearReason // set when Kind == SessionClosed
}

// SessionManager is the single source of truth for "is the user currently
// authenticated". It holds the in-memory credential, mirrors it into the
// persisted slot, runs the expiry monitor, and publishes state transitions.
//
// It is constructed once in the composition root and passed by handle to
// every component that needs it; there is no package-level instance.
type SessionManager struct {
	creds driven.CredentialStore

	mu            sync.Mutex
	cred          *model.Credential
	clock         func() time.Time
	interval      time.Duration
	monitorCancel context.CancelFunc
	subs          map[int]chan SessionEvent
	nextSubID     int
}

// NewSessionManager creates a session manager backed by the given credential
// store. The expiry monitor is not running until a credential is set or
// restored.
func NewSessionManager(creds driven.CredentialStore) *SessionManager {
	return &SessionManager{
		creds:    creds,
		clock:    time.Now,
		interval: DefaultMonitorInterval,
		subs:     make(map[int]chan SessionEvent),
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *SessionManager) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// SetMonitorInterval overrides the expiry monitor cadence. Must be called
// before the first SetToken or Restore.
func (s *SessionManager) SetMonitorInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.interval = d
	}
}

// Restore seeds the in-memory credential from the persisted slot. A
// persisted value that no longer passes the validity check is discarded and
// the slot cleared. Restore emits no events; it runs before any subscriber
// exists.
func (s *SessionManager) Restore(ctx context.Context) {
	raw, err := s.creds.Get(ctx, driven.SessionSlot)
	if err != nil {
		if !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			slog.Warn("could not read persisted session", "error", err)
		}
		return
	}
	if raw == "" {
		return
	}

	cred, err := model.ParseCredential(raw)
	s.mu.Lock()
	now := s.clock()
	s.mu.Unlock()
	if err != nil || !cred.ValidAt(now) {
		if err := s.creds.Delete(ctx, driven.SessionSlot); err != nil {
			slog.Warn("could not clear stale session slot", "error", err)
		}
		slog.Info("discarded expired persisted session")
		return
	}

	s.mu.Lock()
	s.cred = &cred
	s.mu.Unlock()
	s.startMonitor()
	slog.Info("session restored", "expires_at", cred.ExpiresAt)
}

// SetToken validates and stores a new credential, replacing any previous
// one, and restarts the expiry monitor. A token that fails local validity
// checking (malformed, missing expiry, or already inside the margin) is
// rejected and never stored.
func (s *SessionManager) SetToken(ctx context.Context, raw string) error {
	cred, err := model.ParseCredential(raw)
	if err != nil {
		return model.NewAppError(model.ErrInvalidCredentials, "Authentication failed. Please try again.")
	}

	s.mu.Lock()
	now := s.clock()
	s.mu.Unlock()
	if !cred.ValidAt(now) {
		return model.NewAppError(model.ErrInvalidCredentials, "Authentication failed. Please try again.")
	}

	if err := s.creds.Set(ctx, driven.SessionSlot, raw); err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			slog.Debug("credential persistence disabled, session is memory-only")
		} else {
			slog.Warn("could not persist session credential", "error", err)
		}
	}

	s.mu.Lock()
	s.cred = &cred
	s.publishLocked(SessionEvent{Kind: SessionOpened})
	s.mu.Unlock()

	s.startMonitor()
	slog.Info("session opened", "expires_at", cred.ExpiresAt)
	return nil
}

// Clear drops the in-memory and persisted credential and stops the monitor.
// Exactly one SessionClosed event carrying the reason is published per
// transition; calling Clear with no active session is a no-op.
func (s *SessionManager) Clear(ctx context.Context, reason model.ClearReason) {
	s.mu.Lock()
	if s.cred == nil {
		s.mu.Unlock()
		return
	}
	s.cred = nil
	cancel := s.monitorCancel
	s.monitorCancel = nil
	s.publishLocked(SessionEvent{Kind: SessionClosed, Reason: reason})
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if err := s.creds.Delete(ctx, driven.SessionSlot); err != nil && !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
		slog.Warn("could not clear session slot", "error", err)
	}

	slog.Info("session cleared", "reason", string(reason))
}

// Invalidate clears the session because the backend rejected the credential.
// Satisfies the backend adapter's TokenSource.
func (s *SessionManager) Invalidate(ctx context.Context) {
	s.Clear(ctx, model.ClearSessionExpired)
}

// Close stops the expiry monitor. Called once at shutdown.
func (s *SessionManager) Close() {
	s.mu.Lock()
	cancel := s.monitorCancel
	s.monitorCancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Token returns the current raw credential, or false when none is held.
func (s *SessionManager) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return "", false
	}
	return s.cred.Raw, true
}

// Credential returns a copy of the current credential, or false when none is
// held.
func (s *SessionManager) Credential() (model.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return model.Credential{}, false
	}
	return *s.cred, true
}

// Authenticated reports whether a credential is held and still passes the
// validity check right now.
func (s *SessionManager) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred != nil && s.cred.ValidAt(s.clock())
}

// Subscribe registers a session event observer. A subscriber that keeps its
// channel drained observes every transition exactly once, in the order the
// transitions happened. The returned function unsubscribes and closes the
// channel; callers must invoke it at teardown.
func (s *SessionManager) Subscribe() (<-chan SessionEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan SessionEvent, 16)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// publishLocked delivers an event to every subscriber. Callers hold s.mu, so
// deliveries are serialized and per-subscriber ordering follows transition
// order. A subscriber whose buffer is full loses the event and is logged;
// session transitions are user-paced, so this does not happen in practice.
func (s *SessionManager) publishLocked(ev SessionEvent) {
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("session subscriber too slow, event dropped", "subscriber", id)
		}
	}
}

// startMonitor starts the expiry monitor, cancelling the previous one first
// so a re-login never leaves two monitors running.
func (s *SessionManager) startMonitor() {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.monitorCancel != nil {
		s.monitorCancel()
	}
	s.monitorCancel = cancel
	interval := s.interval
	s.mu.Unlock()

	go s.monitor(ctx, interval)
}

// monitor re-evaluates credential validity on a fixed interval and forces a
// session-expired clear the first time the check fails. Polling is
// acceptable here: the validity margin is far larger than the interval.
func (s *SessionManager) monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			cred := s.cred
			now := s.clock()
			s.mu.Unlock()

			if cred == nil {
				return
			}
			if !cred.ValidAt(now) {
				// Detached context: Clear cancels this monitor's own ctx.
				s.Clear(context.Background(), model.ClearSessionExpired)
				return
			}
		}
	}
}
