package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	appErr := NewAppError(ErrSessionExpired, "Your session has expired. Please sign in again.")

	assert.Equal(t, ErrSessionExpired, KindOf(appErr))
	assert.Equal(t, ErrSessionExpired, KindOf(fmt.Errorf("load page: %w", appErr)))
	assert.Equal(t, ErrGeneric, KindOf(errors.New("dial tcp: connection refused")))
	assert.Equal(t, ErrGeneric, KindOf(nil))
}

func TestUserMessage_NeverLeaksTechnicalDetail(t *testing.T) {
	appErr := NewAppError(ErrForbidden, "Access denied. You do not have the required permissions.")

	assert.Equal(t, appErr.Message, UserMessage(appErr))
	assert.Equal(t, appErr.Message, UserMessage(fmt.Errorf("fetch: %w", appErr)))

	msg := UserMessage(errors.New("Get \"http://10.0.0.5/api\": dial tcp: i/o timeout"))
	assert.Equal(t, "Something went wrong. Please try again.", msg)
	assert.NotContains(t, msg, "tcp")
}

func TestHappixTypeLabel(t *testing.T) {
	assert.Equal(t, "Resident", HappixResident.Label())
	assert.Equal(t, "Authorized", HappixAuthorized.Label())
	assert.Equal(t, "Authorized", HappixType("anything-else").Label())
}
