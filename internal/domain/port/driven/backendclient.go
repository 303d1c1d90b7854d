// Package driven defines the port interfaces implemented by driven adapters.
package driven

import (
	"context"
	"io"

	"github.com/coproconnect/panel/internal/domain/model"
)

// ExportKind selects which PDF export the backend renders.
type ExportKind string

const (
	ExportResidents ExportKind = "residents"
	ExportHappix    ExportKind = "happix"
)

// BackendClient is the port to the property management REST backend. All
// implementations classify failures as model.AppError and normalize every
// resident record they return (non-nil occupant and happix slices).
type BackendClient interface {
	// Login exchanges credentials for either a raw token, an MFA challenge,
	// or a classified error. The returned token string is empty when the
	// backend requires a second factor first.
	Login(ctx context.Context, username, password string) (token string, result model.LoginResult, err error)

	// VerifyMFA exchanges a 6-digit code for a raw token.
	VerifyMFA(ctx context.Context, username, code string) (token string, err error)

	FetchResidentsPage(ctx context.Context, q model.PageQuery) (model.PagedResidents, error)
	FetchAllResidents(ctx context.Context) ([]model.Resident, error)
	FetchStatistics(ctx context.Context) (model.Statistics, error)
	FetchApartmentHistory(ctx context.Context, building, floor, door string) ([]model.HistoryEntry, error)

	CreateResident(ctx context.Context, r model.Resident) (model.Resident, error)
	UpdateResident(ctx context.Context, r model.Resident) (model.Resident, error)
	DeleteResident(ctx context.Context, id string) error

	// ExportPDF streams the rendered PDF into w.
	ExportPDF(ctx context.Context, kind ExportKind, w io.Writer) error
}
