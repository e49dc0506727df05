package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// LeadQuery is the resolved predicate set for listing and aggregating leads.
// Only active leads ever match.
type LeadQuery struct {
	// Empty marks a query that matches nothing.
	Empty bool
	// Status is an equality constraint.
	Status *Status
	// IncludeStatuses restricts to a status allow-list when non-nil.
	IncludeStatuses []Status
	ExcludeStatuses []Status
	CampaignID      *uuid.UUID
	// OwnerIDs restricts submitters when non-nil. A non-nil empty slice matches nothing.
	OwnerIDs    []uuid.UUID
	VerifierID  *uuid.UUID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// MatchesNothing reports whether the query can be answered without storage.
func (q LeadQuery) MatchesNothing() bool {
	if q.Empty {
		return true
	}
	if q.OwnerIDs != nil && len(q.OwnerIDs) == 0 {
		return true
	}
	return q.IncludeStatuses != nil && len(q.IncludeStatuses) == 0
}

// Matches evaluates the query against a single lead.
func (q LeadQuery) Matches(l Lead) bool {
	if q.MatchesNothing() || !l.IsActive {
		return false
	}
	if q.Status != nil && l.Status != *q.Status {
		return false
	}
	if q.IncludeStatuses != nil && !slices.Contains(q.IncludeStatuses, l.Status) {
		return false
	}
	if slices.Contains(q.ExcludeStatuses, l.Status) {
		return false
	}
	if q.CampaignID != nil && l.CampaignID != *q.CampaignID {
		return false
	}
	if q.OwnerIDs != nil && !slices.Contains(q.OwnerIDs, l.SubmitterID) {
		return false
	}
	if q.VerifierID != nil && (l.VerifierID == nil || *l.VerifierID != *q.VerifierID) {
		return false
	}
	if q.CreatedFrom != nil && l.CreatedAt.Before(*q.CreatedFrom) {
		return false
	}
	if q.CreatedTo != nil && l.CreatedAt.After(*q.CreatedTo) {
		return false
	}
	return true
}
