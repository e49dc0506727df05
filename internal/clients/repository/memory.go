package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"leadportal_backend/internal/clients/domain"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and database-less runs.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]domain.Client
	logs    []domain.APILog
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clients: make(map[uuid.UUID]domain.Client)}
}

// PutClient inserts or replaces a client account.
func (m *MemoryStore) PutClient(c domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
}

func (m *MemoryStore) ListForwardingClients(_ context.Context) ([]domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Client, 0, len(m.clients))
	for _, c := range m.clients {
		if c.IsActive && c.Config.Ready() {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Client) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (m *MemoryStore) GetClient(_ context.Context, id uuid.UUID) (domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return domain.Client{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryStore) SaveConfig(_ context.Context, clientID uuid.UUID, cfg domain.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	c.Config = cfg
	m.clients[clientID] = c
	return nil
}

func (m *MemoryStore) InsertAPILog(_ context.Context, log domain.APILog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MemoryStore) ListAPILogsByLead(_ context.Context, displayID string) ([]domain.APILog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.APILog, 0)
	for _, l := range m.logs {
		if l.LeadDisplayID == displayID {
			out = append(out, l)
		}
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
