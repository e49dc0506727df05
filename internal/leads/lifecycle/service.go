// Package lifecycle is the lead state machine. It creates leads behind the
// identity check, applies partial updates with exactly one history entry per
// call and soft-deletes leads.
package lifecycle

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/dedup"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/sanitize"

	"github.com/google/uuid"
)

// MaxAllocationAttempts bounds the display id retry loop.
const MaxAllocationAttempts = 5

const (
	SourcePortal    = "portal"
	SourceVendorAPI = "vendor_api"
)

// Repository is the storage the state machine needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.UserDirectory
	repository.CampaignDirectory
}

// IdentityChecker runs the duplicate check and answer normalisation.
type IdentityChecker interface {
	Check(ctx context.Context, responses []domain.Response) (dedup.Result, error)
	Normalize(ctx context.Context, responses []domain.Response) ([]domain.Response, []repository.IdentityKey, error)
}

// Service runs lead lifecycle operations.
type Service struct {
	repo     Repository
	identity IdentityChecker
	eventBus events.Publisher
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a lifecycle service.
func New(repo Repository, identity IdentityChecker, eventBus events.Publisher, m *metrics.Metrics, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		identity: identity,
		eventBus: eventBus,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput is a new submission.
type CreateInput struct {
	SubmitterID    uuid.UUID
	CampaignID     uuid.UUID
	Responses      []domain.Response
	Remark         string
	TimeZone       *string
	Media          []domain.Media
	GeneratedByAPI bool
}

// CreateResult reports what Create did. Bypassed submissions are accepted
// without storing anything.
type CreateResult struct {
	Lead     domain.Lead
	Bypassed bool
}

// InvalidResponses lists the offending batch positions of a rejected responses list.
type InvalidResponses struct {
	Indices []int `json:"indices"`
}

// Create checks identity, allocates the next display id and stores the lead.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	if err := validateResponses(in.Responses); err != nil {
		return CreateResult{}, err
	}
	if err := validateTimeZone(in.TimeZone); err != nil {
		return CreateResult{}, err
	}
	if _, err := s.repo.GetCampaign(ctx, in.CampaignID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return CreateResult{}, apperr.NotFound("campaign not found")
		}
		return CreateResult{}, err
	}

	check, err := s.identity.Check(ctx, in.Responses)
	if err != nil {
		return CreateResult{}, err
	}
	if check.Bypass {
		return CreateResult{Bypassed: true}, nil
	}
	if check.Duplicate {
		s.metrics.IncrementDuplicatesRejected()
		return CreateResult{}, apperr.Conflict("a lead with the same email or phone number already exists")
	}

	params := repository.CreateLeadParams{
		ID:             uuid.New(),
		SubmitterID:    in.SubmitterID,
		CampaignID:     in.CampaignID,
		Responses:      check.Responses,
		Remark:         sanitize.StripHTML(in.Remark),
		TimeZone:       in.TimeZone,
		Media:          in.Media,
		GeneratedByAPI: in.GeneratedByAPI,
		IdentityKeys:   check.IdentityKeys,
		CreatedAt:      s.now(),
	}

	lead, err := s.allocate(ctx, params)
	if err != nil {
		return CreateResult{}, err
	}

	source := SourcePortal
	if lead.GeneratedByAPI {
		source = SourceVendorAPI
	}
	s.metrics.IncrementLeadsCreated(source)

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		DisplayID:      lead.DisplayID,
		SubmitterID:    lead.SubmitterID,
		CampaignID:     lead.CampaignID,
		GeneratedByAPI: lead.GeneratedByAPI,
	})

	return CreateResult{Lead: lead}, nil
}

func (s *Service) allocate(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	for attempt := 1; attempt <= MaxAllocationAttempts; attempt++ {
		lead, err := s.repo.Create(ctx, params)
		switch {
		case err == nil:
			return lead, nil
		case errors.Is(err, repository.ErrDisplayIDTaken):
			s.metrics.IncrementIDAllocationRetries()
			s.log.WithContext(ctx).Warn("lead display id collision", "attempt", attempt)
		case errors.Is(err, repository.ErrDuplicateIdentity):
			s.metrics.IncrementDuplicatesRejected()
			return domain.Lead{}, apperr.Conflict("a lead with the same email or phone number already exists")
		default:
			return domain.Lead{}, err
		}
	}
	return domain.Lead{}, apperr.ResourceExhausted("could not allocate a lead id").WithOp("lifecycle.Create")
}

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	Status      *string
	Remark      *string
	VerifierID  *uuid.UUID
	IsActive    *bool
	Responses   []domain.Response
	RecipientID *uuid.UUID
}

// Update applies changes to an active lead on behalf of actor.
func (s *Service) Update(ctx context.Context, displayID string, actor domain.Actor, changes Changes) (domain.Lead, error) {
	current, err := s.activeLead(ctx, displayID)
	if err != nil {
		return domain.Lead{}, err
	}
	if !scope.CanAct(actor, current) {
		return domain.Lead{}, apperr.Forbidden("not allowed to update this lead")
	}

	next := current
	next.Responses = slices.Clone(current.Responses)
	next.ClientIDs = slices.Clone(current.ClientIDs)
	now := s.now()

	var newStatus domain.Status
	if changes.Status != nil {
		status, ok := domain.ParseStatus(*changes.Status)
		if !ok {
			return domain.Lead{}, apperr.Validation("invalid status").WithDetails(map[string]string{"status": *changes.Status})
		}
		newStatus = status
	}

	params := repository.UpdateLeadParams{}
	if len(changes.Responses) > 0 {
		if err := validateResponses(changes.Responses); err != nil {
			return domain.Lead{}, err
		}
		responses, keys, err := s.identity.Normalize(ctx, changes.Responses)
		if err != nil {
			return domain.Lead{}, err
		}
		next.Responses = responses
		params.IdentityKeys = keys
		params.ReplaceKeys = true
	}

	if changes.IsActive != nil && !*changes.IsActive {
		if !actor.Role.IsElevated() {
			return domain.Lead{}, apperr.Forbidden("only admins may deactivate leads")
		}
		next.IsActive = false
	}

	if changes.VerifierID != nil {
		if err := s.requireUser(ctx, *changes.VerifierID, isVerifier, "verifier not found"); err != nil {
			return domain.Lead{}, err
		}
		verifier := *changes.VerifierID
		next.VerifierID = &verifier
	}

	forwarded := false
	if changes.RecipientID != nil {
		if err := s.requireUser(ctx, *changes.RecipientID, isClient, "client not found"); err != nil {
			return domain.Lead{}, err
		}
		if !next.ForwardedTo(*changes.RecipientID) {
			next.ClientIDs = append(next.ClientIDs, *changes.RecipientID)
			forwarded = true
		}
	}

	if changes.Remark != nil {
		next.Remark = sanitize.StripHTML(*changes.Remark)
	}

	leftFunnel := false
	if changes.Status != nil {
		next.Status = newStatus
		if newStatus == domain.StatusSubmittedToAttorney {
			stamped := now
			next.LeftFunnelAt = &stamped
			leftFunnel = true
		}
	}
	next.UpdatedAt = now

	params.Lead = next
	params.History = domain.NewHistoryEntry(displayID, actor, current.Status, next.Status, changes.Status != nil, changes.RecipientID, now)

	updated, err := s.repo.Update(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Lead{}, apperr.NotFound("lead not found")
		case errors.Is(err, repository.ErrDuplicateIdentity):
			return domain.Lead{}, apperr.Conflict("a lead with the same email or phone number already exists")
		}
		return domain.Lead{}, err
	}

	s.publishUpdate(ctx, actor, current, updated, changes.Status != nil, leftFunnel, forwarded, changes.RecipientID)
	return updated, nil
}

func (s *Service) publishUpdate(ctx context.Context, actor domain.Actor, before, after domain.Lead, statusChanged, leftFunnel, forwarded bool, recipient *uuid.UUID) {
	s.eventBus.Publish(ctx, events.LeadUpdated{
		BaseEvent: events.NewBaseEvent(),
		DisplayID: after.DisplayID,
		ActorID:   actor.ID,
	})
	if statusChanged {
		s.eventBus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent:      events.NewBaseEvent(),
			DisplayID:      after.DisplayID,
			ActorID:        actor.ID,
			PreviousStatus: string(before.Status),
			NewStatus:      string(after.Status),
		})
	}
	if leftFunnel && after.LeftFunnelAt != nil {
		s.eventBus.Publish(ctx, events.LeadLeftFunnel{
			BaseEvent: events.NewBaseEvent(),
			DisplayID: after.DisplayID,
			ActorID:   actor.ID,
			LeftAt:    *after.LeftFunnelAt,
		})
	}
	if forwarded && recipient != nil {
		s.eventBus.Publish(ctx, events.LeadForwarded{
			BaseEvent: events.NewBaseEvent(),
			DisplayID: after.DisplayID,
			ClientID:  *recipient,
			ActorID:   actor.ID,
		})
	}
}

// Deactivate soft-deletes a lead. Only admins and sub-admins may do so.
func (s *Service) Deactivate(ctx context.Context, displayID string, actor domain.Actor) error {
	if !actor.Role.IsElevated() {
		return apperr.Forbidden("only admins may delete leads")
	}
	current, err := s.activeLead(ctx, displayID)
	if err != nil {
		return err
	}
	if !scope.CanAct(actor, current) {
		return apperr.Forbidden("not allowed to delete this lead")
	}

	if err := s.repo.Deactivate(ctx, displayID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return err
	}

	s.eventBus.Publish(ctx, events.LeadDeactivated{
		BaseEvent: events.NewBaseEvent(),
		DisplayID: displayID,
		ActorID:   actor.ID,
	})
	return nil
}

func (s *Service) activeLead(ctx context.Context, displayID string) (domain.Lead, error) {
	lead, err := s.repo.GetByDisplayID(ctx, displayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found")
		}
		return domain.Lead{}, err
	}
	if !lead.IsActive {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (s *Service) requireUser(ctx context.Context, id uuid.UUID, accept func(domain.User) bool, message string) error {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(message)
		}
		return err
	}
	if !user.IsActive || !accept(user) {
		return apperr.NotFound(message)
	}
	return nil
}

func isVerifier(u domain.User) bool {
	return u.Role == domain.RoleStaff && slices.Contains(u.Capabilities, domain.CapabilityVerifier)
}

func isClient(u domain.User) bool {
	return u.Role == domain.RoleClient
}

func validateResponses(responses []domain.Response) error {
	if len(responses) == 0 {
		return apperr.Validation("responses are required")
	}
	var invalid []int
	for i, r := range responses {
		if r.QuestionID == uuid.Nil || strings.TrimSpace(r.Answer) == "" {
			invalid = append(invalid, i)
		}
	}
	if len(invalid) > 0 {
		return apperr.Validation("every response needs a question and a non-empty answer").
			WithDetails(InvalidResponses{Indices: invalid})
	}
	return nil
}

func validateTimeZone(tz *string) error {
	if tz == nil || *tz == "" {
		return nil
	}
	if _, err := time.LoadLocation(*tz); err != nil {
		return apperr.Validation("invalid time zone").WithDetails(map[string]string{"timeZone": *tz})
	}
	return nil
}
