package repository

import (
	"context"
	"fmt"
	"time"

	"leadportal_backend/internal/leads/domain"
)

func (r *Repository) CountByStatusAndRole(ctx context.Context, query domain.LeadQuery) ([]StatusRoleCount, error) {
	out := make([]StatusRoleCount, 0)
	if query.MatchesNothing() {
		return out, nil
	}

	whereClause, args, _ := buildLeadWhere(query)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT l.status, COALESCE(u.role, ''), COUNT(*)
		FROM leads l
		LEFT JOIN users u ON u.id = l.submitter_id
		WHERE %s
		GROUP BY 1, 2
		ORDER BY 1, 2
	`, whereClause), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status, role string
			count        int
		)
		if err := rows.Scan(&status, &role, &count); err != nil {
			return nil, err
		}
		out = append(out, StatusRoleCount{Status: domain.Status(status), SubmitterRole: domain.Role(role), Count: count})
	}
	return out, rows.Err()
}

// CountByHour buckets by wall-clock hour in loc so day, week and month
// grouping can be derived without another round trip.
func (r *Repository) CountByHour(ctx context.Context, query domain.LeadQuery, loc *time.Location) ([]HourCount, error) {
	out := make([]HourCount, 0)
	if query.MatchesNothing() {
		return out, nil
	}

	whereClause, args, argIdx := buildLeadWhere(query)
	args = append(args, loc.String())
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT date_trunc('hour', l.created_at AT TIME ZONE $%d) AS bucket, COUNT(*)
		FROM leads l
		WHERE %s
		GROUP BY bucket
		ORDER BY bucket
	`, argIdx, whereClause), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bucket time.Time
			count  int
		)
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, err
		}
		out = append(out, HourCount{Hour: hourIn(bucket, loc), Count: count})
	}
	return out, rows.Err()
}
