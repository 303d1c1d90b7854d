package model

// HappixType is the two-valued badge type: a resident's own badge or a badge
// issued to an authorized guest. The wire values are fixed by the backend.
type HappixType string

const (
	HappixResident   HappixType = "resident"
	HappixAuthorized HappixType = "autorisé"
)

// Label returns the display name for a badge type. Anything that is not the
// resident type renders as an authorized guest badge.
func (t HappixType) Label() string {
	if t == HappixResident {
		return "Resident"
	}
	return "Authorized"
}

// HappixRelations are the canonical relation-to-resident tags offered by the
// UI. The backend accepts free text up to 50 characters, so this list is a
// suggestion set, not a closed enumeration.
var HappixRelations = []string{
	"occupant",
	"propriétaire",
	"famille",
	"ami",
	"livraison",
	"service",
	"aide à domicile",
	"autre",
}

// HappixAccount is an access-badge account attached to a resident record.
type HappixAccount struct {
	Name     string     `json:"nom" validate:"required,min=2,max=100"`
	Mobile   string     `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Email    string     `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Terminal string     `json:"nom_borne,omitempty" validate:"omitempty,max=50"`
	Type     HappixType `json:"type,omitempty" validate:"omitempty,oneof=resident autorisé"`
	Relation string     `json:"relation,omitempty" validate:"omitempty,max=50"`
}
