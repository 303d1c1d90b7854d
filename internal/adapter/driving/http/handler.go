// Package httphandler is the HTTP driving adapter serving the panel API.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coproconnect/panel/internal/application"
	"github.com/coproconnect/panel/internal/domain/model"
	"github.com/coproconnect/panel/internal/domain/port/driven"
)

// Handler serves the panel's JSON API. List reads go through the
// ResidentStore cache; statistics, history, and exports are passed straight
// through to the backend client.
type Handler struct {
	authSvc *application.AuthService
	store   *application.ResidentStore
	session *application.SessionManager
	client  driven.BackendClient
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	authSvc *application.AuthService,
	store *application.ResidentStore,
	session *application.SessionManager,
	client driven.BackendClient,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		authSvc: authSvc,
		store:   store,
		session: session,
		client:  client,
		logger:  logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/session", h.Login)
	mux.HandleFunc("POST /api/v1/session/verify", h.VerifyMFA)
	mux.HandleFunc("DELETE /api/v1/session", h.Logout)
	mux.HandleFunc("GET /api/v1/session", h.SessionState)

	mux.HandleFunc("GET /api/v1/residents", h.ListResidents)
	mux.HandleFunc("GET /api/v1/residents/all", h.ListAllResidents)
	mux.HandleFunc("POST /api/v1/residents", h.CreateResident)
	mux.HandleFunc("PUT /api/v1/residents/{id}", h.UpdateResident)
	mux.HandleFunc("DELETE /api/v1/residents/{id}", h.DeleteResident)

	mux.HandleFunc("GET /api/v1/statistics", h.Statistics)
	mux.HandleFunc("GET /api/v1/history/apartment", h.ApartmentHistory)
	mux.HandleFunc("GET /api/v1/export/{kind}/pdf", h.ExportPDF)

	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Login opens a session or returns the MFA challenge.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewAppError(model.ErrValidation, "Invalid request body."))
		return
	}

	result, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login failed", "kind", string(model.KindOf(err)))
		writeError(w, err)
		return
	}

	if result.MFARequired {
		writeJSON(w, http.StatusOK, sessionResponse{
			MFARequired: true,
			MaskedEmail: result.MaskedEmail,
		})
		return
	}

	writeJSON(w, http.StatusOK, h.sessionState())
}

// VerifyMFA exchanges a 6-digit code for an open session.
func (h *Handler) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, model.NewAppError(model.ErrValidation, "Invalid request body."))
		return
	}
	if len(req.Code) != 6 {
		writeError(w, model.NewAppError(model.ErrValidation, "Please enter the 6-digit code."))
		return
	}

	if err := h.authSvc.VerifyMFA(r.Context(), req.Username, req.Code); err != nil {
		h.logger.Warn("mfa verification failed", "kind", string(model.KindOf(err)))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.sessionState())
}

// Logout closes the session at the user's request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authSvc.Logout(r.Context(), true)
	writeJSON(w, http.StatusOK, h.sessionState())
}

// SessionState reports whether the panel currently holds a valid credential.
func (h *Handler) SessionState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionState())
}

func (h *Handler) sessionState() sessionResponse {
	resp := sessionResponse{Authenticated: h.session.Authenticated()}
	if cred, ok := h.session.Credential(); ok {
		resp.ExpiresAt = cred.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// ListResidents loads one page through the store and returns the published
// view.
func (h *Handler) ListResidents(w http.ResponseWriter, r *http.Request) {
	q := model.PageQuery{
		Search:    r.URL.Query().Get("search"),
		Building:  r.URL.Query().Get("building"),
		LotStatus: r.URL.Query().Get("status"),
		SortField: r.URL.Query().Get("sortField"),
	}
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			writeError(w, model.NewAppError(model.ErrValidation, "Invalid page number."))
			return
		}
		q.Page = page
	}
	if v := r.URL.Query().Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			writeError(w, model.NewAppError(model.ErrValidation, "Invalid page size."))
			return
		}
		q.Size = size
	}
	if v := r.URL.Query().Get("sortDir"); v == string(model.SortDesc) {
		q.SortDir = model.SortDesc
	} else if v != "" {
		q.SortDir = model.SortAsc
	}

	page, err := h.store.LoadPage(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListAllResidents loads the full collection through the store.
func (h *Handler) ListAllResidents(w http.ResponseWriter, r *http.Request) {
	residents, err := h.store.LoadAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, residents)
}

// CreateResident creates a record and returns the stored copy.
func (h *Handler) CreateResident(w http.ResponseWriter, r *http.Request) {
	var record model.Resident
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, model.NewAppError(model.ErrValidation, "Invalid request body."))
		return
	}

	created, err := h.store.Create(r.Context(), record)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateResident replaces a record and returns the stored copy.
func (h *Handler) UpdateResident(w http.ResponseWriter, r *http.Request) {
	var record model.Resident
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, model.NewAppError(model.ErrValidation, "Invalid request body."))
		return
	}
	record.ID = r.PathValue("id")

	updated, err := h.store.Update(r.Context(), record)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteResident removes a record.
func (h *Handler) DeleteResident(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Statistics passes the backend's aggregate counts through.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client.FetchStatistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ApartmentHistory passes the audit trail for one apartment through.
func (h *Handler) ApartmentHistory(w http.ResponseWriter, r *http.Request) {
	building := r.URL.Query().Get("building")
	floor := r.URL.Query().Get("floor")
	door := r.URL.Query().Get("door")
	if building == "" || floor == "" || door == "" {
		writeError(w, model.NewAppError(model.ErrValidation, "building, floor, and door are required."))
		return
	}

	history, err := h.client.FetchApartmentHistory(r.Context(), building, floor, door)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// ExportPDF streams a backend-rendered PDF export to the caller.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	kind := driven.ExportKind(r.PathValue("kind"))
	if kind != driven.ExportResidents && kind != driven.ExportHappix {
		writeError(w, model.NewAppError(model.ErrNotFound, "The requested resource could not be found."))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+string(kind)+`-list.pdf"`)

	if err := h.client.ExportPDF(r.Context(), kind, w); err != nil {
		// Headers may already be written; log instead of re-encoding.
		h.logger.Error("pdf export failed", "kind", string(kind), "error", err)
	}
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
