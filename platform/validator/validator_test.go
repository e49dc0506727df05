package validator

import (
	"testing"

	"leadportal_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `validate:"required"`
	TimeZone string `validate:"omitempty,iana_tz"`
}

func TestCheckReportsFields(t *testing.T) {
	v := New()

	err := v.Check(sample{TimeZone: "Nowhere/Land"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	details, ok := domainErr.Details.([]FieldError)
	require.True(t, ok)
	assert.ElementsMatch(t, []FieldError{
		{Field: "sample.Name", Rule: "required"},
		{Field: "sample.TimeZone", Rule: "iana_tz"},
	}, details)
}

func TestCheckAcceptsValidZone(t *testing.T) {
	v := New()
	assert.NoError(t, v.Check(sample{Name: "x", TimeZone: "America/New_York"}))
}
