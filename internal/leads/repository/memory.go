package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and database-less local runs.
// A single mutex serialises writers, which also serialises id allocation.
type MemoryStore struct {
	mu        sync.RWMutex
	counter   int64
	leads     map[string]domain.Lead
	keys      map[IdentityKey]uuid.UUID
	history   map[string][]domain.HistoryEntry
	users     map[uuid.UUID]domain.User
	questions map[uuid.UUID]domain.Question
	campaigns map[uuid.UUID]domain.Campaign
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:     make(map[string]domain.Lead),
		keys:      make(map[IdentityKey]uuid.UUID),
		history:   make(map[string][]domain.HistoryEntry),
		users:     make(map[uuid.UUID]domain.User),
		questions: make(map[uuid.UUID]domain.Question),
		campaigns: make(map[uuid.UUID]domain.Campaign),
	}
}

// PutUser inserts or replaces a user.
func (m *MemoryStore) PutUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// PutQuestion inserts or replaces a question.
func (m *MemoryStore) PutQuestion(q domain.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
}

// PutCampaign inserts or replaces a campaign.
func (m *MemoryStore) PutCampaign(c domain.Campaign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[c.ID] = c
}

// ImportLead stores a lead under its existing display id without touching the
// counter, the way legacy rows are migrated in.
func (m *MemoryStore) ImportLead(l domain.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.DisplayID] = cloneLead(l)
}

func (m *MemoryStore) GetByDisplayID(_ context.Context, displayID string) (domain.Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.leads[displayID]
	if !ok {
		return domain.Lead{}, ErrNotFound
	}
	return cloneLead(l), nil
}

func (m *MemoryStore) List(_ context.Context, query domain.LeadQuery, page Page) ([]domain.Lead, int, error) {
	m.mu.RLock()
	matched := m.matching(query)
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		a, _ := domain.ParseDisplayID(matched[i].DisplayID)
		b, _ := domain.ParseDisplayID(matched[j].DisplayID)
		return a > b
	})

	total := len(matched)
	start := min(page.Offset, total)
	end := total
	if page.Limit > 0 {
		end = min(start+page.Limit, total)
	}
	return matched[start:end], total, nil
}

func (m *MemoryStore) HasActiveAnswer(_ context.Context, questionID uuid.UUID, answer string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.leads {
		if !l.IsActive {
			continue
		}
		if got, ok := l.Answer(questionID); ok && got == answer {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Create(_ context.Context, params CreateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range params.IdentityKeys {
		if _, held := m.keys[key]; held {
			return domain.Lead{}, ErrDuplicateIdentity
		}
	}

	m.counter++
	displayID := domain.FormatDisplayID(m.counter)
	if _, taken := m.leads[displayID]; taken {
		return domain.Lead{}, ErrDisplayIDTaken
	}

	lead := domain.Lead{
		ID:             params.ID,
		DisplayID:      displayID,
		SubmitterID:    params.SubmitterID,
		CampaignID:     params.CampaignID,
		Responses:      slices.Clone(params.Responses),
		Status:         domain.StatusNew,
		Remark:         params.Remark,
		IsActive:       true,
		ClientIDs:      []uuid.UUID{},
		TimeZone:       params.TimeZone,
		Media:          slices.Clone(params.Media),
		GeneratedByAPI: params.GeneratedByAPI,
		CreatedAt:      params.CreatedAt,
		UpdatedAt:      params.CreatedAt,
	}
	m.leads[displayID] = lead
	for _, key := range params.IdentityKeys {
		m.keys[key] = lead.ID
	}
	return cloneLead(lead), nil
}

func (m *MemoryStore) Update(_ context.Context, params UpdateLeadParams) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.leads[params.Lead.DisplayID]
	if !ok || !current.IsActive {
		return domain.Lead{}, ErrNotFound
	}

	if params.ReplaceKeys {
		for _, key := range params.IdentityKeys {
			if holder, held := m.keys[key]; held && holder != current.ID {
				return domain.Lead{}, ErrDuplicateIdentity
			}
		}
		m.releaseKeys(current.ID)
		if params.Lead.IsActive {
			for _, key := range params.IdentityKeys {
				m.keys[key] = current.ID
			}
		}
	} else if !params.Lead.IsActive {
		m.releaseKeys(current.ID)
	}

	m.leads[params.Lead.DisplayID] = cloneLead(params.Lead)
	m.history[params.Lead.DisplayID] = append(m.history[params.Lead.DisplayID], params.History)
	return cloneLead(params.Lead), nil
}

func (m *MemoryStore) Deactivate(_ context.Context, displayID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leads[displayID]
	if !ok || !l.IsActive {
		return ErrNotFound
	}
	l.IsActive = false
	l.UpdatedAt = time.Now()
	m.leads[displayID] = l
	m.releaseKeys(l.ID)
	return nil
}

func (m *MemoryStore) ListHistory(_ context.Context, displayID string) ([]domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history[displayID]), nil
}

func (m *MemoryStore) CountByStatusAndRole(_ context.Context, query domain.LeadQuery) ([]StatusRoleCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type groupKey struct {
		status domain.Status
		role   domain.Role
	}
	counts := make(map[groupKey]int)
	for _, l := range m.matching(query) {
		counts[groupKey{status: l.Status, role: m.users[l.SubmitterID].Role}]++
	}

	out := make([]StatusRoleCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StatusRoleCount{Status: k.status, SubmitterRole: k.role, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].SubmitterRole < out[j].SubmitterRole
	})
	return out, nil
}

func (m *MemoryStore) CountByHour(_ context.Context, query domain.LeadQuery, loc *time.Location) ([]HourCount, error) {
	m.mu.RLock()
	matched := m.matching(query)
	m.mu.RUnlock()

	counts := make(map[int64]*HourCount)
	for _, l := range matched {
		local := l.CreatedAt.In(loc)
		hour := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
		bucket, ok := counts[hour.Unix()]
		if !ok {
			bucket = &HourCount{Hour: hour}
			counts[hour.Unix()] = bucket
		}
		bucket.Count++
	}

	out := make([]HourCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) GetUsers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *MemoryStore) ListUserIDsByRole(_ context.Context, role domain.Role) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]uuid.UUID, 0)
	for id, u := range m.users {
		if u.Role == role {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (m *MemoryStore) FindQuestionByTag(_ context.Context, tag domain.QuestionTag) (domain.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.questions {
		if q.Tag != nil && *q.Tag == tag {
			return q, nil
		}
	}
	return domain.Question{}, ErrNotFound
}

func (m *MemoryStore) GetQuestions(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]domain.Question, len(ids))
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (m *MemoryStore) GetCampaign(_ context.Context, id uuid.UUID) (domain.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.campaigns[id]
	if !ok {
		return domain.Campaign{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) GetCampaigns(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]domain.Campaign, len(ids))
	for _, id := range ids {
		if c, ok := m.campaigns[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// matching must be called with the lock held.
func (m *MemoryStore) matching(query domain.LeadQuery) []domain.Lead {
	out := make([]domain.Lead, 0)
	if query.MatchesNothing() {
		return out
	}
	for _, l := range m.leads {
		if query.Matches(l) {
			out = append(out, cloneLead(l))
		}
	}
	return out
}

func (m *MemoryStore) releaseKeys(leadID uuid.UUID) {
	for key, holder := range m.keys {
		if holder == leadID {
			delete(m.keys, key)
		}
	}
}

func cloneLead(l domain.Lead) domain.Lead {
	l.Responses = slices.Clone(l.Responses)
	l.ClientIDs = slices.Clone(l.ClientIDs)
	l.Media = slices.Clone(l.Media)
	return l
}

var _ Store = (*MemoryStore)(nil)
