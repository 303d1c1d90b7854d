package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/coproconnect/panel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// errorResponse is the standard error response body. Kind carries the
// structured classification so API consumers never parse message text.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError writes a classified error response. The HTTP status is derived
// from the error's kind and the body carries only the display-ready message.
func writeError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	writeJSON(w, statusForKind(kind), errorResponse{
		Error: model.UserMessage(err),
		Kind:  string(kind),
	})
}

// statusForKind maps the closed error classification set to response codes.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.ErrValidation:
		return http.StatusBadRequest
	case model.ErrInvalidCredentials, model.ErrSessionExpired:
		return http.StatusUnauthorized
	case model.ErrForbidden:
		return http.StatusForbidden
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrConflict:
		return http.StatusConflict
	case model.ErrInvalidData:
		return http.StatusUnprocessableEntity
	case model.ErrServer:
		return http.StatusBadGateway
	case model.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sessionResponse reports the current authentication state.
type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	MFARequired   bool   `json:"mfa_required,omitempty"`
	MaskedEmail   string `json:"masked_email,omitempty"`
}

// loginRequest is the JSON body for the login endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// verifyRequest is the JSON body for the MFA verification endpoint.
type verifyRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// healthResponse is the JSON representation of the health check endpoint.
type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
