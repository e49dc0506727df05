package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/internal/reporting/aggregate"
	"leadportal_backend/internal/reporting/cache"
	"leadportal_backend/internal/reporting/daterange"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*repository.MemoryStore
	calls atomic.Int32
}

func (c *countingStore) CountByStatusAndRole(ctx context.Context, q domain.LeadQuery) ([]repository.StatusRoleCount, error) {
	c.calls.Add(1)
	return c.MemoryStore.CountByStatusAndRole(ctx, q)
}

func (c *countingStore) CountByHour(ctx context.Context, q domain.LeadQuery, loc *time.Location) ([]repository.HourCount, error) {
	c.calls.Add(1)
	return c.MemoryStore.CountByHour(ctx, q, loc)
}

var now = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *countingStore
	svc    *Service
	vendor uuid.UUID
	staff  uuid.UUID
	seq    int64
}

func newFixture(t *testing.T, c *cache.RedisCache) *fixture {
	t.Helper()
	f := &fixture{
		store:  &countingStore{MemoryStore: repository.NewMemoryStore()},
		vendor: uuid.New(),
		staff:  uuid.New(),
	}
	f.store.PutUser(domain.User{ID: f.vendor, Role: domain.RoleVendor, IsActive: true})
	f.store.PutUser(domain.User{ID: f.staff, Role: domain.RoleStaff, IsActive: true})

	ranges := daterange.NewBuilder(time.UTC, func() time.Time { return now })
	f.svc = New(f.store, scope.NewResolver(f.store), ranges, c, nil, logger.Nop())
	return f
}

func (f *fixture) lead(submitter uuid.UUID, status domain.Status, at time.Time) {
	f.seq++
	f.store.ImportLead(domain.Lead{
		ID:          uuid.New(),
		DisplayID:   domain.FormatDisplayID(f.seq),
		SubmitterID: submitter,
		Status:      status,
		IsActive:    true,
		CreatedAt:   at,
	})
}

func TestAdminWithoutLeadsGetsZeroCategories(t *testing.T) {
	f := newFixture(t, nil)
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	got, err := f.svc.Categories(context.Background(), admin, Request{Timeline: daterange.Today})
	require.NoError(t, err)
	require.Len(t, got, 6)
	for _, c := range got {
		assert.Zero(t, c.Count, c.Label)
	}
}

func TestSubAdminWithoutVendorsFailsClosed(t *testing.T) {
	f := newFixture(t, nil)
	f.lead(f.vendor, domain.StatusNew, now.Add(-time.Hour))
	sub := domain.Actor{ID: uuid.New(), Role: domain.RoleSubAdmin}

	overview, err := f.svc.Overview(context.Background(), sub, Request{Timeline: daterange.Today})
	require.NoError(t, err)
	for _, c := range overview.Categories {
		assert.Zero(t, c.Count)
	}
	assert.False(t, overview.Distribution.HasData)
	assert.False(t, overview.Trend.HasData)
	assert.Zero(t, f.store.calls.Load(), "empty scopes never reach storage")
}

func TestTrendTodayGroupsByHour(t *testing.T) {
	f := newFixture(t, nil)
	f.lead(f.vendor, domain.StatusNew, time.Date(2024, 5, 8, 9, 15, 0, 0, time.UTC))
	f.lead(f.vendor, domain.StatusNew, time.Date(2024, 5, 8, 9, 47, 0, 0, time.UTC))
	f.lead(f.vendor, domain.StatusNew, time.Date(2024, 5, 7, 9, 30, 0, 0, time.UTC))
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	got, err := f.svc.Trend(context.Background(), admin, Request{Timeline: daterange.Today})
	require.NoError(t, err)
	assert.True(t, got.HasData)
	assert.Equal(t, []aggregate.Point{{Label: "09 - 10:00", Count: 2}}, got.Points)
}

func TestTrendRejectsUnknownTimeline(t *testing.T) {
	f := newFixture(t, nil)
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	_, err := f.svc.Trend(context.Background(), admin, Request{Timeline: "someday"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := f.svc.Categories(context.Background(), admin, Request{Timeline: "someday"})
	require.NoError(t, err, "status reports treat unknown timelines as unconstrained")
	assert.Len(t, got, 6)
}

func TestVendorSeesOnlyOwnSubmissions(t *testing.T) {
	f := newFixture(t, nil)
	otherVendor := uuid.New()
	f.store.PutUser(domain.User{ID: otherVendor, Role: domain.RoleVendor, IsActive: true})
	f.lead(f.vendor, domain.StatusVerified, now.Add(-time.Hour))
	f.lead(f.vendor, domain.StatusNew, now.Add(-time.Hour))
	f.lead(otherVendor, domain.StatusNew, now.Add(-time.Hour))
	vendor := domain.Actor{ID: f.vendor, Role: domain.RoleVendor}

	categories, err := f.svc.Categories(context.Background(), vendor, Request{Timeline: daterange.Today})
	require.NoError(t, err)
	assert.Equal(t, []aggregate.CategoryCount{
		{Category: domain.CategoryNew, Label: "New Leads", Count: 1},
		{Category: domain.CategoryPending, Label: "Pending Leads", Count: 0},
		{Category: domain.CategoryApproved, Label: "Approved Leads", Count: 1},
	}, categories)

	query, err := scope.NewResolver(f.store).Resolve(context.Background(), vendor, scope.Filters{})
	require.NoError(t, err)
	_, total, err := f.store.List(context.Background(), query, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "list and cards agree")
}

func TestClientsAreDenied(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Overview(context.Background(), domain.Actor{ID: uuid.New(), Role: domain.RoleClient}, Request{Timeline: daterange.Today})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestReportsAreCachedUntilBumped(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.New(client, time.Minute)

	f := newFixture(t, c)
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	ctx := context.Background()
	req := Request{Timeline: daterange.Today}

	f.lead(f.vendor, domain.StatusNew, now.Add(-time.Hour))
	first, err := f.svc.Categories(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, 1, first[0].Count)

	f.lead(f.vendor, domain.StatusNew, now.Add(-time.Hour))
	cached, err := f.svc.Categories(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, 1, cached[0].Count)
	assert.Equal(t, int32(1), f.store.calls.Load())

	require.NoError(t, c.Bump(ctx))
	fresh, err := f.svc.Categories(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh[0].Count)
}
