package backend

import "github.com/coproconnect/panel/internal/domain/model"

// ClassifyStatus maps an HTTP status code to a classified, display-ready
// error. The mapping is total: every status yields a non-empty message and
// no message ever contains transport detail.
//
// 401 classifies as invalid credentials here; the authorized request path in
// client.go overrides it to session-expired before this table is consulted.
func ClassifyStatus(status int) *model.AppError {
	switch status {
	case 400:
		return model.NewAppError(model.ErrInvalidData, "Invalid request. Please check the submitted information.")
	case 401:
		return model.NewAppError(model.ErrInvalidCredentials, "Invalid credentials. Please check your username and password.")
	case 403:
		return model.NewAppError(model.ErrForbidden, "Access denied. You do not have the required permissions.")
	case 404:
		return model.NewAppError(model.ErrNotFound, "The requested resource could not be found.")
	case 409:
		return model.NewAppError(model.ErrConflict, "This resource already exists.")
	case 422:
		return model.NewAppError(model.ErrInvalidData, "Invalid data. Please check the submitted information.")
	case 503:
		return model.NewAppError(model.ErrUnavailable, "Service temporarily unavailable. Please try again later.")
	}
	if status >= 500 {
		return model.NewAppError(model.ErrServer, "Server error. Please try again later.")
	}
	return model.NewAppError(model.ErrGeneric, "Something went wrong. Please try again.")
}

// errSessionExpired is raised on a 401 from an authorized endpoint.
func errSessionExpired() *model.AppError {
	return model.NewAppError(model.ErrSessionExpired, "Your session has expired. Please sign in again.")
}
