package model

// ChangeCategory identifies which part of a resident record a change touched.
type ChangeCategory string

const (
	ChangeLot      ChangeCategory = "LOT"
	ChangeOwner    ChangeCategory = "PROPRIETAIRE"
	ChangeOccupant ChangeCategory = "OCCUPANT"
	ChangeHappix   ChangeCategory = "HAPPIX"
)

// ChangeDetail is a single field-level diff inside a history entry.
type ChangeDetail struct {
	Category   ChangeCategory `json:"category"`
	ChangeType string         `json:"change_type"`
	FieldLabel string         `json:"field_label"`
	OldValue   *string        `json:"old_value"`
	NewValue   *string        `json:"new_value"`
}

// HistoryEntry is one audited update or deletion of an apartment's record.
// ChangedAt is kept as the backend's timestamp string; it is display-only and
// the backend does not guarantee a timezone suffix.
type HistoryEntry struct {
	ID          string         `json:"id"`
	ResidentID  string         `json:"resident_id"`
	LotID       string         `json:"lot_id"`
	Building    string         `json:"batiment"`
	Floor       string         `json:"etage"`
	Door        string         `json:"porte"`
	ActionType  string         `json:"action_type"`
	Description string         `json:"description"`
	Changes     []ChangeDetail `json:"changes"`
	ChangedAt   string         `json:"changed_at"`
	ChangedBy   string         `json:"changed_by,omitempty"`
}
