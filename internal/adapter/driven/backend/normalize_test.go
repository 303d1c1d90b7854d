package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coproconnect/panel/internal/domain/model"
)

func TestNormalizeResident(t *testing.T) {
	r := NormalizeResident(model.Resident{ID: "1", LotID: "A-101"})
	assert.NotNil(t, r.Occupants)
	assert.NotNil(t, r.HappixAccounts)
	assert.Empty(t, r.Occupants)

	// Idempotent: existing data passes through untouched.
	again := NormalizeResident(r)
	assert.Equal(t, r, again)

	withData := NormalizeResident(model.Resident{
		Occupants: []model.Occupant{{Name: "Dupont"}},
	})
	assert.Len(t, withData.Occupants, 1)
	assert.NotNil(t, withData.HappixAccounts)
}

func TestNormalizeResidents_NilCollection(t *testing.T) {
	out := NormalizeResidents(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestExtractCollection(t *testing.T) {
	bare := []byte(`[{"id":"1","lot_id":"A-101"},{"id":"2","lot_id":"A-102"}]`)
	list, err := extractCollection(bare)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	wrapped := []byte(`{"data":[{"id":"3","lot_id":"B-201"}]}`)
	list, err = extractCollection(wrapped)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "3", list[0].ID)

	_, err = extractCollection([]byte(`{"unexpected":true}`))
	assert.Error(t, err)
}

func TestExtractRecord(t *testing.T) {
	bare := []byte(`{"id":"1","lot_id":"A-101","batiment":"A"}`)
	r, err := extractRecord(bare)
	require.NoError(t, err)
	assert.Equal(t, "A", r.Building)

	wrapped := []byte(`{"data":{"id":"2","lot_id":"A-102"}}`)
	r, err = extractRecord(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "2", r.ID)

	_, err = extractRecord([]byte(`[]`))
	assert.Error(t, err)
}
