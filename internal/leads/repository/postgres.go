package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	leadCounterName   = "lead"
	uniqueViolation   = "23505"
	identityKeyPKName = "lead_identity_keys_pkey"
)

const leadColumns = `l.id, l.display_id, l.submitter_id, l.campaign_id, l.responses, l.status, l.remark,
	l.is_active, l.verifier_id, l.client_ids, l.time_zone, l.left_funnel_at, l.media,
	l.generated_by_api, l.created_at, l.updated_at`

// Repository is the PostgreSQL Store.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByDisplayID(ctx context.Context, displayID string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM leads l WHERE l.display_id = $1`, leadColumns), displayID)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) List(ctx context.Context, query domain.LeadQuery, page Page) ([]domain.Lead, int, error) {
	if query.MatchesNothing() {
		return []domain.Lead{}, 0, nil
	}

	whereClause, args, argIdx := buildLeadWhere(query)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads l WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = total
	}
	args = append(args, limit, page.Offset)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

func (r *Repository) HasActiveAnswer(ctx context.Context, questionID uuid.UUID, answer string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leads l
			WHERE l.is_active
				AND l.responses @> jsonb_build_array(jsonb_build_object('questionId', $1::text, 'answer', $2::text))
		)
	`, questionID.String(), answer).Scan(&exists)
	return exists, err
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	responses, err := json.Marshal(params.Responses)
	if err != nil {
		return domain.Lead{}, err
	}
	media, err := json.Marshal(nonNilMedia(params.Media))
	if err != nil {
		return domain.Lead{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO lead_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = lead_counters.value + 1
		RETURNING value
	`, leadCounterName).Scan(&seq); err != nil {
		return domain.Lead{}, fmt.Errorf("reserve display id: %w", err)
	}
	displayID := domain.FormatDisplayID(seq)

	tag, err := tx.Exec(ctx, `
		INSERT INTO leads (id, display_id, submitter_id, campaign_id, responses, status, remark,
			is_active, client_ids, time_zone, media, generated_by_api, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, '{}', $8, $9, $10, $11, $11)
		ON CONFLICT (display_id) DO NOTHING
	`, params.ID, displayID, params.SubmitterID, params.CampaignID, responses, domain.StatusNew,
		params.Remark, params.TimeZone, media, params.GeneratedByAPI, params.CreatedAt)
	if err != nil {
		return domain.Lead{}, err
	}
	if tag.RowsAffected() == 0 {
		// keep the advanced counter so the retry skips the occupied number
		if err := tx.Commit(ctx); err != nil {
			return domain.Lead{}, err
		}
		return domain.Lead{}, ErrDisplayIDTaken
	}

	if err := insertIdentityKeys(ctx, tx, params.ID, params.IdentityKeys); err != nil {
		return domain.Lead{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, err
	}

	return domain.Lead{
		ID:             params.ID,
		DisplayID:      displayID,
		SubmitterID:    params.SubmitterID,
		CampaignID:     params.CampaignID,
		Responses:      params.Responses,
		Status:         domain.StatusNew,
		Remark:         params.Remark,
		IsActive:       true,
		ClientIDs:      []uuid.UUID{},
		TimeZone:       params.TimeZone,
		Media:          nonNilMedia(params.Media),
		GeneratedByAPI: params.GeneratedByAPI,
		CreatedAt:      params.CreatedAt,
		UpdatedAt:      params.CreatedAt,
	}, nil
}

func (r *Repository) Update(ctx context.Context, params UpdateLeadParams) (domain.Lead, error) {
	lead := params.Lead
	responses, err := json.Marshal(lead.Responses)
	if err != nil {
		return domain.Lead{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE leads SET
			responses = $2, status = $3, remark = $4, is_active = $5, verifier_id = $6,
			client_ids = $7, left_funnel_at = $8, updated_at = $9
		WHERE id = $1 AND is_active
	`, lead.ID, responses, lead.Status, lead.Remark, lead.IsActive, lead.VerifierID,
		nonNilUUIDs(lead.ClientIDs), lead.LeftFunnelAt, lead.UpdatedAt)
	if err != nil {
		return domain.Lead{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Lead{}, ErrNotFound
	}

	if params.ReplaceKeys || !lead.IsActive {
		if _, err := tx.Exec(ctx, `DELETE FROM lead_identity_keys WHERE lead_id = $1`, lead.ID); err != nil {
			return domain.Lead{}, err
		}
	}
	if params.ReplaceKeys && lead.IsActive {
		if err := insertIdentityKeys(ctx, tx, lead.ID, params.IdentityKeys); err != nil {
			return domain.Lead{}, err
		}
	}

	h := params.History
	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_history (id, lead_display_id, actor_id, previous_status, new_status, note,
			update_type, recipient_id, changed_by_sub_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, h.ID, h.LeadDisplayID, h.ActorID, h.PreviousStatus, h.NewStatus, h.Note,
		h.UpdateType, h.RecipientID, h.ChangedBySubAdmin, h.CreatedAt); err != nil {
		return domain.Lead{}, fmt.Errorf("append history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (r *Repository) Deactivate(ctx context.Context, displayID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var leadID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE leads SET is_active = FALSE, updated_at = now()
		WHERE display_id = $1 AND is_active
		RETURNING id
	`, displayID).Scan(&leadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM lead_identity_keys WHERE lead_id = $1`, leadID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) ListHistory(ctx context.Context, displayID string) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_display_id, actor_id, previous_status, new_status, note,
			update_type, recipient_id, changed_by_sub_admin, created_at
		FROM lead_history
		WHERE lead_display_id = $1
		ORDER BY created_at ASC, id ASC
	`, displayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.LeadDisplayID, &e.ActorID, &e.PreviousStatus, &e.NewStatus,
			&e.Note, &e.UpdateType, &e.RecipientID, &e.ChangedBySubAdmin, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func insertIdentityKeys(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, keys []IdentityKey) error {
	for _, key := range keys {
		_, err := tx.Exec(ctx, `
			INSERT INTO lead_identity_keys (question_id, answer, lead_id) VALUES ($1, $2, $3)
		`, key.QuestionID, key.Answer, leadID)
		if isUniqueViolation(err, identityKeyPKName) {
			return ErrDuplicateIdentity
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func buildLeadWhere(query domain.LeadQuery) (string, []interface{}, int) {
	whereClauses := []string{"l.is_active = TRUE"}
	args := []interface{}{}
	argIdx := 1

	add := func(format string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(format, argIdx))
		args = append(args, value)
		argIdx++
	}

	if query.Status != nil {
		add("l.status = $%d", string(*query.Status))
	}
	if query.IncludeStatuses != nil {
		add("l.status = ANY($%d)", statusStrings(query.IncludeStatuses))
	}
	if len(query.ExcludeStatuses) > 0 {
		add("NOT (l.status = ANY($%d))", statusStrings(query.ExcludeStatuses))
	}
	if query.CampaignID != nil {
		add("l.campaign_id = $%d", *query.CampaignID)
	}
	if query.OwnerIDs != nil {
		add("l.submitter_id = ANY($%d)", query.OwnerIDs)
	}
	if query.VerifierID != nil {
		add("l.verifier_id = $%d", *query.VerifierID)
	}
	if query.CreatedFrom != nil {
		add("l.created_at >= $%d", *query.CreatedFrom)
	}
	if query.CreatedTo != nil {
		add("l.created_at <= $%d", *query.CreatedTo)
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead      domain.Lead
		responses []byte
		media     []byte
		status    string
	)
	if err := row.Scan(
		&lead.ID, &lead.DisplayID, &lead.SubmitterID, &lead.CampaignID, &responses, &status, &lead.Remark,
		&lead.IsActive, &lead.VerifierID, &lead.ClientIDs, &lead.TimeZone, &lead.LeftFunnelAt, &media,
		&lead.GeneratedByAPI, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	if err := json.Unmarshal(responses, &lead.Responses); err != nil {
		return domain.Lead{}, fmt.Errorf("decode responses of %s: %w", lead.DisplayID, err)
	}
	if err := json.Unmarshal(media, &lead.Media); err != nil {
		return domain.Lead{}, fmt.Errorf("decode media of %s: %w", lead.DisplayID, err)
	}
	return lead, nil
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func nonNilMedia(media []domain.Media) []domain.Media {
	if media == nil {
		return []domain.Media{}
	}
	return media
}

func nonNilUUIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func hourIn(bucket time.Time, loc *time.Location) time.Time {
	return time.Date(bucket.Year(), bucket.Month(), bucket.Day(), bucket.Hour(), 0, 0, 0, loc)
}

var _ Store = (*Repository)(nil)
