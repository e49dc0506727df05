package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParams(created time.Time, keys ...IdentityKey) CreateLeadParams {
	return CreateLeadParams{
		ID:           uuid.New(),
		SubmitterID:  uuid.New(),
		CampaignID:   uuid.New(),
		IdentityKeys: keys,
		CreatedAt:    created,
	}
}

func TestMemoryCreateAllocatesSequentialIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	first, err := store.Create(ctx, newParams(now))
	require.NoError(t, err)
	second, err := store.Create(ctx, newParams(now))
	require.NoError(t, err)

	assert.Equal(t, "lead-1", first.DisplayID)
	assert.Equal(t, "lead-2", second.DisplayID)
	assert.Equal(t, domain.StatusNew, first.Status)
	assert.True(t, first.IsActive)
}

func TestMemoryConcurrentCreatesGetDistinctIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lead, err := store.Create(ctx, newParams(time.Now()))
			if err == nil {
				ids <- lead.DisplayID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		_, ok := domain.ParseDisplayID(id)
		assert.True(t, ok)
	}
	assert.Len(t, seen, n)
}

func TestMemoryCreateRejectsHeldIdentityKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := IdentityKey{QuestionID: uuid.New(), Answer: "a@b.io"}

	_, err := store.Create(ctx, newParams(time.Now(), key))
	require.NoError(t, err)

	_, err = store.Create(ctx, newParams(time.Now(), key))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	// the failed create did not consume a number
	next, err := store.Create(ctx, newParams(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "lead-2", next.DisplayID)
}

func TestMemoryDeactivateReleasesIdentityKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := IdentityKey{QuestionID: uuid.New(), Answer: "+16502530000"}

	lead, err := store.Create(ctx, newParams(time.Now(), key))
	require.NoError(t, err)
	require.NoError(t, store.Deactivate(ctx, lead.DisplayID))

	assert.ErrorIs(t, store.Deactivate(ctx, lead.DisplayID), ErrNotFound)

	_, err = store.Create(ctx, newParams(time.Now(), key))
	assert.NoError(t, err)
}

func TestMemoryCreateReportsTakenDisplayID(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.ImportLead(domain.Lead{ID: uuid.New(), DisplayID: "lead-1", IsActive: true})

	_, err := store.Create(ctx, newParams(time.Now()))
	assert.ErrorIs(t, err, ErrDisplayIDTaken)

	lead, err := store.Create(ctx, newParams(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "lead-2", lead.DisplayID)
}

func TestMemoryUpdateAppendsHistoryAndReplacesKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	q := uuid.New()
	oldKey := IdentityKey{QuestionID: q, Answer: "old@x.io"}
	newKey := IdentityKey{QuestionID: q, Answer: "new@x.io"}

	lead, err := store.Create(ctx, newParams(time.Now(), oldKey))
	require.NoError(t, err)

	lead.Remark = "checked"
	entry := domain.HistoryEntry{ID: uuid.New(), LeadDisplayID: lead.DisplayID, UpdateType: domain.UpdateDataUpdate}
	_, err = store.Update(ctx, UpdateLeadParams{Lead: lead, IdentityKeys: []IdentityKey{newKey}, ReplaceKeys: true, History: entry})
	require.NoError(t, err)

	history, err := store.ListHistory(ctx, lead.DisplayID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = store.Create(ctx, newParams(time.Now(), oldKey))
	assert.NoError(t, err, "old key was released")
	_, err = store.Create(ctx, newParams(time.Now(), newKey))
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestMemoryListNewestFirstWithPaging(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.Create(ctx, newParams(base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	leads, total, err := store.List(ctx, domain.LeadQuery{}, Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, leads, 2)
	assert.Equal(t, "lead-3", leads[0].DisplayID)
	assert.Equal(t, "lead-2", leads[1].DisplayID)

	leads, total, err = store.List(ctx, domain.LeadQuery{Empty: true}, Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, leads)
}

func TestMemoryCountByHourUsesLocation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 13:15 and 13:47 UTC are 09:15 and 09:47 in New York during DST
	for _, minute := range []int{15, 47} {
		_, err := store.Create(ctx, newParams(time.Date(2024, 6, 3, 13, minute, 0, 0, time.UTC)))
		require.NoError(t, err)
	}

	counts, err := store.CountByHour(ctx, domain.LeadQuery{}, loc)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 9, counts[0].Hour.Hour())
	assert.Equal(t, loc, counts[0].Hour.Location())
}

func TestMemoryCountByStatusAndRole(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	staff := domain.User{ID: uuid.New(), Role: domain.RoleStaff, IsActive: true}
	vendor := domain.User{ID: uuid.New(), Role: domain.RoleVendor, IsActive: true}
	store.PutUser(staff)
	store.PutUser(vendor)

	for i, owner := range []uuid.UUID{staff.ID, staff.ID, vendor.ID} {
		p := newParams(time.Now())
		p.SubmitterID = owner
		_, err := store.Create(ctx, p)
		require.NoError(t, err, fmt.Sprint(i))
	}

	counts, err := store.CountByStatusAndRole(ctx, domain.LeadQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []StatusRoleCount{
		{Status: domain.StatusNew, SubmitterRole: domain.RoleStaff, Count: 2},
		{Status: domain.StatusNew, SubmitterRole: domain.RoleVendor, Count: 1},
	}, counts)
}
