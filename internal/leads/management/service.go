// Package management serves the read side of the leads context: paged
// listings, lead detail and the per-lead audit trail.
package management

import (
	"context"
	"errors"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"

	"github.com/google/uuid"
)

// DefaultPageSize is used when the caller does not ask for a limit.
const DefaultPageSize = 10

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.HistoryReader
	repository.UserDirectory
	repository.QuestionDirectory
	repository.CampaignDirectory
}

// ScopeResolver builds the actor's lead query.
type ScopeResolver interface {
	Resolve(ctx context.Context, actor domain.Actor, filters scope.Filters) (domain.LeadQuery, error)
}

// APILogReader lists outbound forwarding calls made for a lead.
type APILogReader interface {
	ListByLead(ctx context.Context, displayID string) ([]transport.APILogResponse, error)
}

// ListParams selects a page of the actor's visible leads.
type ListParams struct {
	Filters scope.Filters
	Page    int
	Limit   int
}

// Service handles lead read operations.
type Service struct {
	repo     Repository
	resolver ScopeResolver
	apiLogs  APILogReader
}

// New creates a management service. apiLogs may be nil when forwarding is not wired.
func New(repo Repository, resolver ScopeResolver, apiLogs APILogReader) *Service {
	return &Service{repo: repo, resolver: resolver, apiLogs: apiLogs}
}

// SetAPILogReader wires the forwarding log source after construction.
func (s *Service) SetAPILogReader(apiLogs APILogReader) {
	s.apiLogs = apiLogs
}

// List returns one newest-first page of the leads the actor may see.
func (s *Service) List(ctx context.Context, actor domain.Actor, params ListParams) (transport.LeadListResponse, error) {
	page := max(params.Page, 1)
	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}

	query, err := s.resolver.Resolve(ctx, actor, params.Filters)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	resp := transport.LeadListResponse{CurrentPage: page, Leads: []transport.LeadResponse{}}
	if query.MatchesNothing() {
		return resp, nil
	}

	leads, total, err := s.repo.List(ctx, query, repository.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	refs, err := s.loadRefs(ctx, leads)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	resp.TotalLeads = total
	resp.TotalPages = (total + limit - 1) / limit
	for _, lead := range leads {
		resp.Leads = append(resp.Leads, toLeadResponse(lead, refs))
	}
	return resp, nil
}

// Get returns a lead with question titles and its forwarding log.
func (s *Service) Get(ctx context.Context, actor domain.Actor, displayID string) (transport.LeadDetailResponse, error) {
	lead, err := s.visibleLead(ctx, actor, displayID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	refs, err := s.loadRefs(ctx, []domain.Lead{lead})
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	questionIDs := make([]uuid.UUID, 0, len(lead.Responses))
	for _, r := range lead.Responses {
		questionIDs = append(questionIDs, r.QuestionID)
	}
	questions, err := s.repo.GetQuestions(ctx, questionIDs)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	logs := []transport.APILogResponse{}
	if s.apiLogs != nil {
		logs, err = s.apiLogs.ListByLead(ctx, lead.DisplayID)
		if err != nil {
			return transport.LeadDetailResponse{}, err
		}
	}

	return toLeadDetailResponse(lead, refs, questions, logs), nil
}

// History returns the audit trail of a lead in the order it was written.
func (s *Service) History(ctx context.Context, actor domain.Actor, displayID string) (transport.HistoryListResponse, error) {
	lead, err := s.visibleLead(ctx, actor, displayID)
	if err != nil {
		return transport.HistoryListResponse{}, err
	}

	entries, err := s.repo.ListHistory(ctx, lead.DisplayID)
	if err != nil {
		return transport.HistoryListResponse{}, err
	}

	resp := transport.HistoryListResponse{Items: make([]transport.HistoryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Items = append(resp.Items, toHistoryResponse(e))
	}
	return resp, nil
}

func (s *Service) visibleLead(ctx context.Context, actor domain.Actor, displayID string) (domain.Lead, error) {
	if !actor.Role.CanList() {
		return domain.Lead{}, apperr.Forbidden("role may not view leads")
	}

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
	if !scope.CanAct(actor, lead) {
		return domain.Lead{}, apperr.Forbidden("lead is outside your scope")
	}
	return lead, nil
}

// refs holds the users and campaigns referenced by a batch of leads.
type refs struct {
	users     map[uuid.UUID]domain.User
	campaigns map[uuid.UUID]domain.Campaign
}

func (s *Service) loadRefs(ctx context.Context, leads []domain.Lead) (refs, error) {
	userIDs := make([]uuid.UUID, 0, len(leads))
	campaignIDs := make([]uuid.UUID, 0, len(leads))
	for _, l := range leads {
		userIDs = append(userIDs, l.SubmitterID)
		userIDs = append(userIDs, l.ClientIDs...)
		campaignIDs = append(campaignIDs, l.CampaignID)
	}

	users, err := s.repo.GetUsers(ctx, uniqueIDs(userIDs))
	if err != nil {
		return refs{}, err
	}
	campaigns, err := s.repo.GetCampaigns(ctx, uniqueIDs(campaignIDs))
	if err != nil {
		return refs{}, err
	}
	return refs{users: users, campaigns: campaigns}, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
