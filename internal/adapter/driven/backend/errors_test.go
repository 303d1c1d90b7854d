package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coproconnect/panel/internal/domain/model"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   model.ErrorKind
	}{
		{400, model.ErrInvalidData},
		{401, model.ErrInvalidCredentials},
		{403, model.ErrForbidden},
		{404, model.ErrNotFound},
		{409, model.ErrConflict},
		{422, model.ErrInvalidData},
		{500, model.ErrServer},
		{502, model.ErrServer},
		{503, model.ErrUnavailable},
		{504, model.ErrServer},
		// Unmapped and sentinel statuses fall back to generic.
		{0, model.ErrGeneric},
		{418, model.ErrGeneric},
		{302, model.ErrGeneric},
	}

	for _, tt := range tests {
		got := ClassifyStatus(tt.status)
		assert.Equal(t, tt.want, got.Kind, "status %d", tt.status)
		assert.NotEmpty(t, got.Message, "status %d", tt.status)
	}
}

func TestClassifyStatus_MessagesCarryNoTransportDetail(t *testing.T) {
	for _, status := range []int{0, 400, 401, 403, 404, 409, 422, 500, 503} {
		msg := ClassifyStatus(status).Message
		assert.NotContains(t, msg, "http")
		assert.NotContains(t, msg, "status")
	}
}
