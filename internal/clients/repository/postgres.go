package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadportal_backend/internal/clients/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, name, email, is_active, client_config`

// Repository is the PostgreSQL Store. Clients live in the users table with
// their configuration in the client_config column.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var (
		c   domain.Client
		raw []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.IsActive, &raw); err != nil {
		return domain.Client{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Config); err != nil {
			return domain.Client{}, fmt.Errorf("decode client_config of %s: %w", c.ID, err)
		}
	}
	return c, nil
}

func (r *Repository) ListForwardingClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM users
		WHERE role = 'client'
		  AND is_active
		  AND COALESCE(client_config->>'path', '') <> ''
		  AND COALESCE(client_config->>'method', '') <> ''
		ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (domain.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM users WHERE id = $1 AND role = 'client'`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Client{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) SaveConfig(ctx context.Context, clientID uuid.UUID, cfg domain.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET client_config = $2, updated_at = now() WHERE id = $1 AND role = 'client'`,
		clientID, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) InsertAPILog(ctx context.Context, log domain.APILog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_api_logs (id, lead_display_id, client_id, request_body, response, response_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.LeadDisplayID, log.ClientID, []byte(log.RequestBody), nullableJSON(log.Response), log.StatusCode, log.CreatedAt)
	return err
}

func (r *Repository) ListAPILogsByLead(ctx context.Context, displayID string) ([]domain.APILog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_display_id, client_id, request_body, response, response_status, created_at
		FROM lead_api_logs
		WHERE lead_display_id = $1
		ORDER BY created_at, id`, displayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.APILog, 0)
	for rows.Next() {
		var (
			l             domain.APILog
			body, respRaw []byte
		)
		if err := rows.Scan(&l.ID, &l.LeadDisplayID, &l.ClientID, &body, &respRaw, &l.StatusCode, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.RequestBody = body
		if len(respRaw) > 0 {
			l.Response = respRaw
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

var _ Store = (*Repository)(nil)
