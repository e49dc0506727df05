package vendorapi

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestLog is one audited vendor API call.
type RequestLog struct {
	ID          uuid.UUID
	UserID      *uuid.UUID
	CampaignID  *uuid.UUID
	RequestBody json.RawMessage
	StatusCode  int
	Response    json.RawMessage
	Host        string
	UserAgent   string
	Origin      string
	Error       *string
	CreatedAt   time.Time
}

// LogStore persists the audit trail.
type LogStore interface {
	InsertRequestLog(ctx context.Context, entry RequestLog) error
}

// Repository stores vendor API logs in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new vendor API log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InsertRequestLog(ctx context.Context, e RequestLog) error {
	query := `
		INSERT INTO vendor_api_logs (
			id, user_id, campaign_id, request_body, response_status, response,
			host, user_agent, origin, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var response []byte
	if len(e.Response) > 0 {
		response = e.Response
	}
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.CampaignID, []byte(e.RequestBody), e.StatusCode, response,
		e.Host, e.UserAgent, e.Origin, e.Error, e.CreatedAt,
	)
	return err
}

// MemoryStore keeps vendor API logs in process.
type MemoryStore struct {
	mu   sync.Mutex
	logs []RequestLog
}

// NewMemoryStore creates an empty in-memory log store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertRequestLog(_ context.Context, e RequestLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, e)
	return nil
}

// Logs returns the recorded calls, oldest first.
func (m *MemoryStore) Logs() []RequestLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.logs)
}

var (
	_ LogStore = (*Repository)(nil)
	_ LogStore = (*MemoryStore)(nil)
)
