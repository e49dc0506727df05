package repository

import (
	"context"
	"errors"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lead or referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateIdentity is returned when an identity key is held by another active lead.
	ErrDuplicateIdentity = errors.New("identity key already held by an active lead")
	// ErrDisplayIDTaken is returned when the allocated display id already exists.
	// The counter has advanced, so the caller may retry.
	ErrDisplayIDTaken = errors.New("display id already taken")
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByDisplayID(ctx context.Context, displayID string) (domain.Lead, error)
	List(ctx context.Context, query domain.LeadQuery, page Page) ([]domain.Lead, int, error)
}

// IdentityReader answers duplicate lookups against active leads.
type IdentityReader interface {
	HasActiveAnswer(ctx context.Context, questionID uuid.UUID, answer string) (bool, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	// Create allocates the next display id and inserts the lead with its
	// identity keys in one transaction.
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	// Update persists the lead and appends the history entry atomically.
	Update(ctx context.Context, params UpdateLeadParams) (domain.Lead, error)
	// Deactivate soft-deletes an active lead and releases its identity keys.
	Deactivate(ctx context.Context, displayID string) error
}

// HistoryReader lists the audit trail of a lead.
type HistoryReader interface {
	ListHistory(ctx context.Context, displayID string) ([]domain.HistoryEntry, error)
}

// AggregateReader provides pre-aggregated counts for reporting.
type AggregateReader interface {
	CountByStatusAndRole(ctx context.Context, query domain.LeadQuery) ([]StatusRoleCount, error)
	CountByHour(ctx context.Context, query domain.LeadQuery, loc *time.Location) ([]HourCount, error)
}

// UserDirectory resolves referenced users.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
	ListUserIDsByRole(ctx context.Context, role domain.Role) ([]uuid.UUID, error)
	GetUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error)
}

// QuestionDirectory resolves questions.
type QuestionDirectory interface {
	FindQuestionByTag(ctx context.Context, tag domain.QuestionTag) (domain.Question, error)
	GetQuestions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Question, error)
}

// CampaignDirectory resolves campaigns.
type CampaignDirectory interface {
	GetCampaign(ctx context.Context, id uuid.UUID) (domain.Campaign, error)
	GetCampaigns(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Campaign, error)
}

// Store composes every lead persistence concern.
type Store interface {
	LeadReader
	IdentityReader
	LeadWriter
	HistoryReader
	AggregateReader
	UserDirectory
	QuestionDirectory
	CampaignDirectory
}

// Page selects a window of a newest-first listing.
type Page struct {
	Limit  int
	Offset int
}

// IdentityKey is a (question, answer) pair unique among active leads.
type IdentityKey struct {
	QuestionID uuid.UUID
	Answer     string
}

// CreateLeadParams carries everything needed to insert a new lead.
type CreateLeadParams struct {
	ID             uuid.UUID
	SubmitterID    uuid.UUID
	CampaignID     uuid.UUID
	Responses      []domain.Response
	Remark         string
	TimeZone       *string
	Media          []domain.Media
	GeneratedByAPI bool
	IdentityKeys   []IdentityKey
	CreatedAt      time.Time
}

// UpdateLeadParams carries a fully merged lead plus its history entry.
type UpdateLeadParams struct {
	Lead domain.Lead
	// IdentityKeys replaces the lead's keys when ReplaceKeys is set.
	IdentityKeys []IdentityKey
	ReplaceKeys  bool
	History      domain.HistoryEntry
}

// StatusRoleCount is the number of leads per status and submitter role.
type StatusRoleCount struct {
	Status        domain.Status
	SubmitterRole domain.Role
	Count         int
}

// HourCount is the number of leads created in one local wall-clock hour.
type HourCount struct {
	Hour  time.Time
	Count int
}
