package backend

import (
	"encoding/json"
	"fmt"

	"github.com/coproconnect/panel/internal/domain/model"
)

// NormalizeResident guarantees the occupant and happix account lists are
// present as (possibly empty) slices. Idempotent.
func NormalizeResident(r model.Resident) model.Resident {
	if r.Occupants == nil {
		r.Occupants = []model.Occupant{}
	}
	if r.HappixAccounts == nil {
		r.HappixAccounts = []model.HappixAccount{}
	}
	return r
}

// NormalizeResidents normalizes every record in a collection. A nil
// collection becomes an empty one.
func NormalizeResidents(rs []model.Resident) []model.Resident {
	out := make([]model.Resident, 0, len(rs))
	for _, r := range rs {
		out = append(out, NormalizeResident(r))
	}
	return out
}

// extractCollection accepts the two payload shapes the backend serves for the
// full collection: a bare JSON array, or an object wrapping it under "data".
func extractCollection(data []byte) ([]model.Resident, error) {
	var list []model.Resident
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Data []model.Resident `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	return nil, fmt.Errorf("unexpected residents payload shape")
}

// extractRecord accepts a single resident either bare or wrapped under "data".
func extractRecord(data []byte) (model.Resident, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 {
		data = envelope.Data
	}

	var r model.Resident
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Resident{}, fmt.Errorf("decode resident: %w", err)
	}
	return r, nil
}
