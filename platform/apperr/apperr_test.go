package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{Validation("bad email"), http.StatusBadRequest, "validation_error"},
		{NotFound("lead not found"), http.StatusNotFound, "not_found"},
		{Forbidden("nope"), http.StatusForbidden, "authorization_error"},
		{Conflict("duplicate"), http.StatusConflict, "conflict"},
		{ResourceExhausted("no ids left"), http.StatusServiceUnavailable, "resource_exhausted"},
		{New(KindInternal, "boom"), http.StatusInternalServerError, "internal_error"},
		{New(KindUnauthorized, "who"), http.StatusUnauthorized, "unauthorized"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.status, tc.err.HTTPStatus(), tc.code)
		assert.Equal(t, tc.code, tc.err.Kind.Code())
	}
}

func TestGetKindUnwrapsChains(t *testing.T) {
	wrapped := fmt.Errorf("create lead: %w", Conflict("duplicate"))

	assert.Equal(t, KindConflict, GetKind(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := Validation("invalid email format").WithOp("dedup.Check")
	assert.Equal(t, "dedup.Check: invalid email format", err.Error())
}

func TestUnknownKindDefaults(t *testing.T) {
	assert.Equal(t, "unknown_error", KindUnknown.Code())
	assert.Equal(t, http.StatusBadRequest, KindUnknown.Status())
}
