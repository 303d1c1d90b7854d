package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coproconnect/panel/internal/application"
	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// memCredStore is a minimal in-memory CredentialStore for wiring a real
// SessionManager in handler tests.
type memCredStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memCredStore) Set(_ context.Context, slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[slot] = value
	return nil
}

func (m *memCredStore) Get(_ context.Context, slot string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[slot], nil
}

func (m *memCredStore) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, slot)
	return nil
}

// stubBackend scripts the backend client for handler tests.
type stubBackend struct {
	loginFn func(username, password string) (string, model.LoginResult, error)
	pageFn  func(q model.PageQuery) (model.PagedResidents, error)
	statsFn func() (model.Statistics, error)
}

var _ driven.BackendClient = (*stubBackend)(nil)

func (s *stubBackend) Login(_ context.Context, username, password string) (string, model.LoginResult, error) {
	if s.loginFn != nil {
		return s.loginFn(username, password)
	}
	return "", model.LoginResult{}, model.NewAppError(model.ErrInvalidCredentials, "Invalid credentials. Please check your username and password.")
}

func (s *stubBackend) VerifyMFA(_ context.Context, _, _ string) (string, error) {
	return "", model.NewAppError(model.ErrInvalidCredentials, "The verification code is invalid or has expired.")
}

func (s *stubBackend) FetchResidentsPage(_ context.Context, q model.PageQuery) (model.PagedResidents, error) {
	if s.pageFn != nil {
		return s.pageFn(q)
	}
	return model.EmptyPage(), nil
}

func (s *stubBackend) FetchAllResidents(_ context.Context) ([]model.Resident, error) {
	return []model.Resident{}, nil
}

func (s *stubBackend) FetchStatistics(_ context.Context) (model.Statistics, error) {
	if s.statsFn != nil {
		return s.statsFn()
	}
	return model.Statistics{}, nil
}

func (s *stubBackend) FetchApartmentHistory(_ context.Context, _, _, _ string) ([]model.HistoryEntry, error) {
	return []model.HistoryEntry{}, nil
}

func (s *stubBackend) CreateResident(_ context.Context, r model.Resident) (model.Resident, error) {
	r.ID = "created-id"
	return r, nil
}

func (s *stubBackend) UpdateResident(_ context.Context, r model.Resident) (model.Resident, error) {
	return r, nil
}

func (s *stubBackend) DeleteResident(_ context.Context, _ string) error {
	return nil
}

func (s *stubBackend) ExportPDF(_ context.Context, _ driven.ExportKind, w io.Writer) error {
	_, err := w.Write([]byte("%PDF-1.4 export"))
	return err
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	raw, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}

func newTestServer(t *testing.T, backend driven.BackendClient, authenticated bool) http.Handler {
	t.Helper()

	session := application.NewSessionManager(&memCredStore{})
	t.Cleanup(session.Close)
	if authenticated {
		require.NoError(t, session.SetToken(context.Background(), signedToken(t, time.Now().Add(time.Hour))))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := application.NewAuthService(backend, session)
	store := application.NewResidentStore(backend, session, nil)

	return NewServeMux(NewHandler(authSvc, store, session, backend, logger), logger)
}

func TestLogin_ReturnsSessionState(t *testing.T) {
	backend := &stubBackend{
		loginFn: func(username, password string) (string, model.LoginResult, error) {
			return signedToken(t, time.Now().Add(time.Hour)), model.LoginResult{}, nil
		},
	}
	srv := newTestServer(t, backend, false)

	body := strings.NewReader(`{"username":"manager","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["authenticated"])
	assert.NotEmpty(t, resp["expires_at"])
}

func TestLogin_MFAChallenge(t *testing.T) {
	backend := &stubBackend{
		loginFn: func(_, _ string) (string, model.LoginResult, error) {
			return "", model.LoginResult{MFARequired: true, MaskedEmail: "m***r@example.com"}, nil
		},
	}
	srv := newTestServer(t, backend, false)

	body := strings.NewReader(`{"username":"manager","password":"secret"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["mfa_required"])
	assert.Equal(t, "m***r@example.com", resp["masked_email"])
	assert.Nil(t, resp["authenticated"])
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, false)

	body := strings.NewReader(`{"username":"manager","password":"wrong"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session", body))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.ErrInvalidCredentials), resp.Kind)
	assert.NotEmpty(t, resp.Error)
}

func TestVerifyMFA_RequiresSixDigitCode(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, false)

	body := strings.NewReader(`{"username":"manager","code":"123"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/session/verify", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionState_Unauthenticated(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["authenticated"])
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["authenticated"])
}

func TestListResidents(t *testing.T) {
	backend := &stubBackend{
		pageFn: func(q model.PageQuery) (model.PagedResidents, error) {
			assert.Equal(t, 1, q.Page)
			assert.Equal(t, 25, q.Size)
			assert.Equal(t, "dupont", q.Search)
			return model.PagedResidents{
				Residents:     []model.Resident{{ID: "1", LotID: "A-101", Occupants: []model.Occupant{}, HappixAccounts: []model.HappixAccount{}}},
				CurrentPage:   1,
				TotalPages:    3,
				TotalElements: 60,
				PageSize:      25,
			}, nil
		},
	}
	srv := newTestServer(t, backend, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/residents?page=1&size=25&search=dupont", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var page model.PagedResidents
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(60), page.TotalElements)
	require.Len(t, page.Residents, 1)
}

func TestListResidents_RejectsBadPagination(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	for _, target := range []string{
		"/api/v1/residents?page=-1",
		"/api/v1/residents?page=abc",
		"/api/v1/residents?size=0",
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestCreateResident(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	record := `{"lot_id":"A-101","batiment":"A","etage":"1","porte":"01","proprietaire_nom":"Dupont"}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/residents", strings.NewReader(record)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Resident
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "created-id", created.ID)
}

func TestCreateResident_InvalidRecord(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	record := `{"lot_id":"A-101"}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/residents", strings.NewReader(record)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(model.ErrValidation), resp.Kind)
}

func TestDeleteResident(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/residents/42", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStatistics_BackendFailureClassified(t *testing.T) {
	backend := &stubBackend{
		statsFn: func() (model.Statistics, error) {
			return model.Statistics{}, model.NewAppError(model.ErrUnavailable, "Service temporarily unavailable. Please try again later.")
		},
	}
	srv := newTestServer(t, backend, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApartmentHistory_RequiresAddress(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history/apartment?building=A&floor=3", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportPDF(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/residents/pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestExportPDF_UnknownKind(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/bogus/pdf", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubBackend{}, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
