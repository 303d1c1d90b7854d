// Package model contains the core domain types shared across the panel.
package model

// Occupant is a person living in a lot. UID is a client-assigned identifier
// used to track occupant rows across edits; the backend stores it opaquely.
type Occupant struct {
	Name   string `json:"nom" validate:"required,max=100"`
	Mobile string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Email  string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	UID    string `json:"_uid,omitempty"`
}

// Resident is a lot occupancy record: the lot address, the owner's contact
// details, and the attached occupant and Happix badge lists.
//
// Occupants and HappixAccounts are always non-nil once a record has passed
// through the backend adapter's normalization, even when the backend omits
// the fields entirely.
type Resident struct {
	ID             string          `json:"id,omitempty"`
	LotID          string          `json:"lot_id" validate:"required,max=50"`
	Building       string          `json:"batiment" validate:"required,max=50"`
	Floor          string          `json:"etage" validate:"required,max=20"`
	Door           string          `json:"porte" validate:"required,max=20"`
	CellarID       string          `json:"cave_id,omitempty" validate:"omitempty,max=50"`
	LotStatus      string          `json:"statut_lot,omitempty" validate:"omitempty,max=50"`
	OwnerName      string          `json:"proprietaire_nom" validate:"required,min=2,max=100"`
	OwnerMobile    string          `json:"proprietaire_mobile,omitempty" validate:"omitempty,max=20"`
	OwnerEmail     string          `json:"proprietaire_email,omitempty" validate:"omitempty,email,max=100"`
	Occupants      []Occupant      `json:"occupants" validate:"dive"`
	HappixAccounts []HappixAccount `json:"happix_accounts" validate:"dive"`
}

// PagedResidents is one window of the resident collection together with the
// pagination metadata the backend derived for it. It is replaced wholesale on
// every successful fetch and reset to EmptyPage on failure or session loss.
type PagedResidents struct {
	Residents     []Resident `json:"residents"`
	CurrentPage   int        `json:"currentPage"`
	TotalPages    int        `json:"totalPages"`
	TotalElements int64      `json:"totalElements"`
	PageSize      int        `json:"pageSize"`
}

// DefaultPageSize is the page size used before the user picks one.
const DefaultPageSize = 10

// EmptyPage is the published state after a failed fetch or a logout.
func EmptyPage() PagedResidents {
	return PagedResidents{
		Residents: []Resident{},
		PageSize:  DefaultPageSize,
	}
}

// SortDirection constrains the sort parameter sent to the backend.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageQuery carries the list command parameters: pagination window plus the
// optional search, filter, and sort state owned by the presentation layer.
type PageQuery struct {
	Page      int
	Size      int
	Search    string
	Building  string
	LotStatus string
	SortField string
	SortDir   SortDirection
}
