package daterange

import (
	"testing"
	"time"

	"leadportal_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestBuildThisWeekOnWednesday(t *testing.T) {
	wednesday := time.Date(2024, 5, 8, 15, 4, 5, 0, time.UTC)
	r := NewBuilder(time.UTC, fixed(wednesday)).Build(ThisWeek, nil, nil)

	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), *r.From)
	assert.Equal(t, time.Date(2024, 5, 12, 23, 59, 59, 999_000_000, time.UTC), *r.To)
	assert.Equal(t, time.Monday, r.From.Weekday())
	assert.Equal(t, time.Sunday, r.To.Weekday())
}

func TestBuildThisWeekOnSundayStartsPreviousMonday(t *testing.T) {
	sunday := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	r := NewBuilder(time.UTC, fixed(sunday)).Build(ThisWeek, nil, nil)

	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), *r.From)
	assert.Equal(t, time.Date(2024, 5, 12, 23, 59, 59, 999_000_000, time.UTC), *r.To)
}

func TestBuildKeywords(t *testing.T) {
	now := time.Date(2024, 2, 14, 13, 30, 0, 0, time.UTC)
	b := NewBuilder(time.UTC, fixed(now))

	tests := []struct {
		timeline Timeline
		from     time.Time
		to       time.Time
	}{
		{Today, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 14, 23, 59, 59, 999_000_000, time.UTC)},
		{ThisMonth, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), now},
		{ThisYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 59, 59, 999_000_000, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(string(tc.timeline), func(t *testing.T) {
			r := b.Build(tc.timeline, nil, nil)
			assert.Equal(t, tc.from, *r.From)
			assert.Equal(t, tc.to, *r.To)
		})
	}
}

func TestBuildUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC is still the previous evening in New York.
	now := time.Date(2024, 7, 2, 2, 0, 0, 0, time.UTC)
	r := NewBuilder(ny, fixed(now)).Build(Today, nil, nil)

	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, ny), *r.From)
}

func TestBuildCustom(t *testing.T) {
	b := NewBuilder(time.UTC, fixed(time.Now()))
	start := time.Date(2024, 3, 3, 17, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

	r := b.Build(Custom, &start, &end)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), *r.From)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, 999_000_000, time.UTC), *r.To)

	assert.True(t, b.Build(Custom, &start, nil).Unconstrained())
	assert.True(t, b.Build(Custom, nil, &end).Unconstrained())
}

func TestUnknownTimeline(t *testing.T) {
	b := NewBuilder(time.UTC, fixed(time.Now()))

	assert.True(t, b.Build("last-decade", nil, nil).Unconstrained())

	_, err := b.BuildForTrend("last-decade", nil, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = b.BuildForTrend(Custom, nil, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	r, err := b.BuildForTrend(Today, nil, nil)
	require.NoError(t, err)
	assert.False(t, r.Unconstrained())
}
