package aggregate

import (
	"testing"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/reporting/daterange"
	"leadportal_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesAdminWithNoLeads(t *testing.T) {
	got := Categories(domain.RoleAdmin, nil)

	require.Len(t, got, 6)
	labels := make([]string, 0, len(got))
	for _, c := range got {
		labels = append(labels, c.Label)
		assert.Zero(t, c.Count)
	}
	assert.Equal(t, []string{"New Leads", "Pending Leads", "Approved Leads", "Rejected Leads", "Paid Leads", "Billable Leads"}, labels)
}

func TestCategoriesPendingCountsOnlyStaffSubmissions(t *testing.T) {
	counts := []repository.StatusRoleCount{
		{Status: domain.StatusNew, SubmitterRole: domain.RoleVendor, Count: 4},
		{Status: domain.StatusUnderVerification, SubmitterRole: domain.RoleStaff, Count: 2},
		{Status: domain.StatusSubmittedToAttorney, SubmitterRole: domain.RoleStaff, Count: 1},
		{Status: domain.StatusUnderVerification, SubmitterRole: domain.RoleVendor, Count: 9},
		{Status: domain.StatusApprove, SubmitterRole: domain.RoleVendor, Count: 3},
		{Status: domain.StatusVerified, SubmitterRole: domain.RoleStaff, Count: 2},
		{Status: domain.StatusCallback, SubmitterRole: domain.RoleStaff, Count: 7},
		{Status: domain.StatusPaid, SubmitterRole: domain.RoleVendor, Count: 5},
	}

	admin := Categories(domain.RoleAdmin, counts)
	byCategory := map[domain.Category]int{}
	for _, c := range admin {
		byCategory[c.Category] = c.Count
	}
	assert.Equal(t, map[domain.Category]int{
		domain.CategoryNew:      4,
		domain.CategoryPending:  3,
		domain.CategoryApproved: 5,
		domain.CategoryRejected: 0,
		domain.CategoryPaid:     5,
		domain.CategoryBillable: 0,
	}, byCategory)

	vendor := Categories(domain.RoleVendor, counts)
	require.Len(t, vendor, 3)
	assert.Equal(t, []domain.Category{domain.CategoryNew, domain.CategoryPending, domain.CategoryApproved},
		[]domain.Category{vendor[0].Category, vendor[1].Category, vendor[2].Category})

	assert.Len(t, Categories(domain.RoleSubAdmin, counts), 6)
	assert.Empty(t, Categories(domain.RoleClient, counts))
}

func TestStatusDistribution(t *testing.T) {
	counts := []repository.StatusRoleCount{
		{Status: domain.StatusVerified, SubmitterRole: domain.RoleStaff, Count: 2},
		{Status: domain.StatusVerified, SubmitterRole: domain.RoleVendor, Count: 1},
		{Status: domain.StatusCallback, SubmitterRole: domain.RoleStaff, Count: 4},
		{Status: domain.StatusPaid, SubmitterRole: domain.RoleStaff, Count: 6},
		{Status: domain.StatusNew, SubmitterRole: domain.RoleStaff, Count: 0},
	}

	staff := StatusDistribution(domain.RoleStaff, counts)
	assert.True(t, staff.HasData)
	assert.Equal(t, []Slice{
		{Status: domain.StatusCallback, Label: domain.StatusCallback.Label(), Color: domain.StatusCallback.Color(), Count: 4},
		{Status: domain.StatusVerified, Label: domain.StatusVerified.Label(), Color: domain.StatusVerified.Color(), Count: 3},
	}, staff.Slices)

	admin := StatusDistribution(domain.RoleAdmin, counts)
	require.Len(t, admin.Slices, 3)
	assert.Equal(t, domain.StatusPaid, admin.Slices[1].Status)

	vendor := StatusDistribution(domain.RoleVendor, []repository.StatusRoleCount{{Status: domain.StatusPaid, Count: 3}})
	assert.False(t, vendor.HasData)
	assert.Empty(t, vendor.Slices)
}

func hour(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestTrendToday(t *testing.T) {
	// 09:15 and 09:47 both truncate to the 09:00 hour.
	hours := []repository.HourCount{{Hour: hour(2024, 5, 8, 9), Count: 2}}

	got, err := Trend(daterange.Today, daterange.Range{}, hours)
	require.NoError(t, err)
	assert.True(t, got.HasData)
	assert.Equal(t, []Point{{Label: "09 - 10:00", Count: 2}}, got.Points)
}

func TestTrendStrategies(t *testing.T) {
	may1 := hour(2024, 5, 1, 0)
	may31 := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	long := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timeline daterange.Timeline
		rng      daterange.Range
		hours    []repository.HourCount
		want     []Point
	}{
		{
			name:     "this week by day",
			timeline: daterange.ThisWeek,
			hours: []repository.HourCount{
				{Hour: hour(2024, 5, 8, 14), Count: 1},
				{Hour: hour(2024, 5, 6, 9), Count: 2},
				{Hour: hour(2024, 5, 8, 9), Count: 1},
			},
			want: []Point{{"2024-05-06", 2}, {"2024-05-08", 2}},
		},
		{
			name:     "this month by relative week",
			timeline: daterange.ThisMonth,
			rng:      daterange.Range{From: &may1, To: &may31},
			hours: []repository.HourCount{
				{Hour: hour(2024, 5, 1, 10), Count: 1},  // Wed, week of Apr 29
				{Hour: hour(2024, 5, 5, 10), Count: 1},  // Sun, same week
				{Hour: hour(2024, 5, 6, 10), Count: 3},  // Mon
				{Hour: hour(2024, 5, 27, 10), Count: 1}, // last Monday
			},
			want: []Point{{"Week 1", 2}, {"Week 2", 3}, {"Week 5", 1}},
		},
		{
			name:     "this year by month name",
			timeline: daterange.ThisYear,
			hours: []repository.HourCount{
				{Hour: hour(2024, 11, 3, 1), Count: 1},
				{Hour: hour(2024, 2, 3, 1), Count: 4},
			},
			want: []Point{{"February", 4}, {"November", 1}},
		},
		{
			name:     "short custom by iso week",
			timeline: daterange.Custom,
			rng:      daterange.Range{From: &may1, To: &may31},
			hours: []repository.HourCount{
				{Hour: hour(2024, 5, 13, 1), Count: 1},
				{Hour: hour(2024, 5, 1, 1), Count: 1},
			},
			want: []Point{{"Week 18", 1}, {"Week 20", 1}},
		},
		{
			name:     "long custom by month",
			timeline: daterange.Custom,
			rng:      daterange.Range{From: &may1, To: &long},
			hours: []repository.HourCount{
				{Hour: hour(2024, 7, 2, 1), Count: 2},
				{Hour: hour(2024, 5, 20, 1), Count: 1},
			},
			want: []Point{{"Month 5", 1}, {"Month 7", 2}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Trend(tc.timeline, tc.rng, tc.hours)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Points)
		})
	}
}

func TestTrendWithoutData(t *testing.T) {
	got, err := Trend(daterange.ThisWeek, daterange.Range{}, nil)
	require.NoError(t, err)
	assert.False(t, got.HasData)
	assert.Empty(t, got.Points)
}

func TestTrendUnknownTimeline(t *testing.T) {
	_, err := Trend("fortnight", daterange.Range{}, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
