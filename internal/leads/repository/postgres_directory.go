package repository

import (
	"context"
	"errors"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, role, capabilities, assigned_vendor_ids, is_active, created_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Capabilities, &u.AssignedVendorIDs, &u.IsActive, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (r *Repository) GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	out := make(map[uuid.UUID]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *Repository) ListUserIDsByRole(ctx context.Context, role domain.Role) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE role = $1 ORDER BY id`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q   domain.Question
		tag *string
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Type, &tag); err != nil {
		return domain.Question{}, err
	}
	if tag != nil {
		t := domain.QuestionTag(*tag)
		q.Tag = &t
	}
	return q, nil
}

func (r *Repository) FindQuestionByTag(ctx context.Context, tag domain.QuestionTag) (domain.Question, error) {
	q, err := scanQuestion(r.pool.QueryRow(ctx, `SELECT id, title, type, tag FROM questions WHERE tag = $1`, string(tag)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, ErrNotFound
	}
	return q, err
}

func (r *Repository) GetQuestions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Question, error) {
	out := make(map[uuid.UUID]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, title, type, tag FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = q
	}
	return out, rows.Err()
}

func (r *Repository) GetCampaign(ctx context.Context, id uuid.UUID) (domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `SELECT id, title, is_active FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, ErrNotFound
	}
	return c, err
}

func (r *Repository) GetCampaigns(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Campaign, error) {
	out := make(map[uuid.UUID]domain.Campaign, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, title, is_active FROM campaigns WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.Campaign
		if err := rows.Scan(&c.ID, &c.Title, &c.IsActive); err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}
