// Package service manages client forwarding: configuration, payload preview
// and delivery of leads to client endpoints.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadportal_backend/internal/clients/domain"
	"leadportal_backend/internal/clients/forwarder"
	"leadportal_backend/internal/clients/repository"
	"leadportal_backend/internal/clients/transport"
	leadsdomain "leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/google/uuid"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeQueued  = "queued"
)

// Repository is the storage the service needs.
type Repository interface {
	repository.ClientReader
	repository.ConfigWriter
	repository.APILogStore
}

// Sender delivers a payload to a client endpoint.
type Sender interface {
	Send(ctx context.Context, cfg domain.Config, payload domain.Payload) (forwarder.Result, error)
}

// LeadGateway is the slice of the leads context that forwarding touches.
type LeadGateway interface {
	// LeadAnswers returns the answers of a lead the actor may act on.
	LeadAnswers(ctx context.Context, actor leadsdomain.Actor, displayID string) (map[uuid.UUID]string, error)
	// RecordRecipient adds the client to the lead's forwarding history.
	RecordRecipient(ctx context.Context, actor leadsdomain.Actor, displayID string, clientID uuid.UUID) error
}

// ForwardRequest asks for a lead to be sent to a client later.
type ForwardRequest struct {
	ClientID      uuid.UUID
	LeadDisplayID string
	Actor         leadsdomain.Actor
}

// Enqueuer schedules deferred forwarding.
type Enqueuer interface {
	EnqueueForward(ctx context.Context, req ForwardRequest) error
}

// ForwardError is returned when the client endpoint did not accept the lead.
type ForwardError struct {
	StatusCode int
	Body       json.RawMessage
	Err        error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("forward lead: status %d: %v", e.StatusCode, e.Err)
}

func (e *ForwardError) Unwrap() error { return e.Err }

// Service runs client forwarding operations.
type Service struct {
	repo     Repository
	leads    LeadGateway
	sender   Sender
	enqueuer Enqueuer
	val      *validator.Validator
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// New creates the service. enqueuer may be nil when no queue is configured.
func New(repo Repository, leads LeadGateway, sender Sender, enqueuer Enqueuer, val *validator.Validator, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		leads:    leads,
		sender:   sender,
		enqueuer: enqueuer,
		val:      val,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ListClients returns the clients a lead can be forwarded to.
func (s *Service) ListClients(ctx context.Context) (transport.ClientListResponse, error) {
	clients, err := s.repo.ListForwardingClients(ctx)
	if err != nil {
		return transport.ClientListResponse{}, err
	}
	resp := transport.ClientListResponse{Items: make([]transport.ClientResponse, 0, len(clients))}
	for _, c := range clients {
		resp.Items = append(resp.Items, toClientResponse(c))
	}
	return resp, nil
}

// GetClient returns one client with its configuration.
func (s *Service) GetClient(ctx context.Context, clientID uuid.UUID) (transport.ClientResponse, error) {
	c, err := s.client(ctx, clientID)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	return toClientResponse(c), nil
}

// SaveConfig validates and stores a client's forwarding configuration.
func (s *Service) SaveConfig(ctx context.Context, clientID uuid.UUID, cfg domain.Config) (transport.ClientResponse, error) {
	cfg = cfg.Normalize()
	if err := s.val.Check(cfg); err != nil {
		return transport.ClientResponse{}, err
	}
	if problems := cfg.Problems(); len(problems) > 0 {
		return transport.ClientResponse{}, apperr.Validation("invalid field mappings").WithDetails(problems)
	}

	if err := s.repo.SaveConfig(ctx, clientID, cfg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ClientResponse{}, apperr.NotFound("client not found")
		}
		return transport.ClientResponse{}, err
	}
	s.log.WithContext(ctx).Info("client configuration saved", "client_id", clientID, "fields", len(cfg.RequestBody))
	return s.GetClient(ctx, clientID)
}

// Preview resolves the client's configuration against a lead without sending it.
func (s *Service) Preview(ctx context.Context, actor leadsdomain.Actor, clientID uuid.UUID, displayID string) (transport.PreviewResponse, error) {
	c, err := s.client(ctx, clientID)
	if err != nil {
		return transport.PreviewResponse{}, err
	}
	answers, err := s.leads.LeadAnswers(ctx, actor, displayID)
	if err != nil {
		return transport.PreviewResponse{}, err
	}

	return transport.PreviewResponse{
		ClientID: c.ID,
		LeadID:   displayID,
		Configuration: transport.PreviewConfiguration{
			Path:        c.Config.Path,
			Method:      c.Config.Method,
			Headers:     c.Config.Headers,
			RequestBody: domain.Resolve(c.Config, answers),
		},
	}, nil
}

// Send forwards a lead synchronously and records the client on success.
func (s *Service) Send(ctx context.Context, actor leadsdomain.Actor, clientID uuid.UUID, displayID string) (transport.SendResponse, error) {
	return s.forward(ctx, ForwardRequest{ClientID: clientID, LeadDisplayID: displayID, Actor: actor})
}

// Enqueue checks the request and hands it to the queue.
func (s *Service) Enqueue(ctx context.Context, actor leadsdomain.Actor, clientID uuid.UUID, displayID string) error {
	if s.enqueuer == nil {
		return apperr.Validation("deferred forwarding is not configured")
	}
	c, err := s.readyClient(ctx, clientID)
	if err != nil {
		return err
	}
	if _, err := s.leads.LeadAnswers(ctx, actor, displayID); err != nil {
		return err
	}

	req := ForwardRequest{ClientID: c.ID, LeadDisplayID: displayID, Actor: actor}
	if err := s.enqueuer.EnqueueForward(ctx, req); err != nil {
		return fmt.Errorf("enqueue forward: %w", err)
	}
	s.metrics.IncrementForwardOutcome(outcomeQueued)
	s.log.WithContext(ctx).Info("lead forward queued", "lead_id", displayID, "client_id", c.ID)
	return nil
}

// Forward runs a queued request.
func (s *Service) Forward(ctx context.Context, req ForwardRequest) error {
	_, err := s.forward(ctx, req)
	return err
}

// ListAPILogs returns the outbound calls recorded for a lead.
func (s *Service) ListAPILogs(ctx context.Context, displayID string) ([]domain.APILog, error) {
	return s.repo.ListAPILogsByLead(ctx, displayID)
}

func (s *Service) forward(ctx context.Context, req ForwardRequest) (transport.SendResponse, error) {
	log := s.log.WithContext(ctx).WithLead(req.LeadDisplayID)

	c, err := s.readyClient(ctx, req.ClientID)
	if err != nil {
		return transport.SendResponse{}, err
	}
	answers, err := s.leads.LeadAnswers(ctx, req.Actor, req.LeadDisplayID)
	if err != nil {
		return transport.SendResponse{}, err
	}

	fields := domain.Resolve(c.Config, answers)
	result, sendErr := s.sender.Send(ctx, c.Config, domain.NewPayload(fields))
	s.recordCall(ctx, req, fields, result)

	if sendErr != nil {
		s.metrics.IncrementForwardOutcome(outcomeFailure)
		log.Warn("lead forward failed", "client_id", c.ID, "status", result.StatusCode, "error", sendErr)
		if result.StatusCode == 0 {
			return transport.SendResponse{}, sendErr
		}
		return transport.SendResponse{}, &ForwardError{StatusCode: result.StatusCode, Body: result.Body, Err: sendErr}
	}

	if err := s.leads.RecordRecipient(ctx, req.Actor, req.LeadDisplayID, c.ID); err != nil {
		log.Error("lead forwarded but recipient not recorded", "client_id", c.ID, "error", err)
		return transport.SendResponse{}, err
	}

	s.metrics.IncrementForwardOutcome(outcomeSuccess)
	log.Info("lead forwarded", "client_id", c.ID, "status", result.StatusCode)
	return transport.SendResponse{StatusCode: result.StatusCode, Response: result.Body}, nil
}

// recordCall writes the api log. A failed write does not undo the delivery.
func (s *Service) recordCall(ctx context.Context, req ForwardRequest, fields []domain.ResolvedField, result forwarder.Result) {
	if result.StatusCode == 0 {
		return
	}
	body, err := json.Marshal(fields)
	if err != nil {
		s.log.WithContext(ctx).Error("encode api log body", "error", err)
		return
	}
	entry := domain.APILog{
		ID:            uuid.New(),
		LeadDisplayID: req.LeadDisplayID,
		ClientID:      req.ClientID,
		RequestBody:   body,
		Response:      result.Body,
		StatusCode:    result.StatusCode,
		CreatedAt:     s.now(),
	}
	if err := s.repo.InsertAPILog(ctx, entry); err != nil {
		s.log.WithContext(ctx).Error("record api log", "lead_id", req.LeadDisplayID, "client_id", req.ClientID, "error", err)
	}
}

func (s *Service) client(ctx context.Context, clientID uuid.UUID) (domain.Client, error) {
	c, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Client{}, apperr.NotFound("client not found")
		}
		return domain.Client{}, err
	}
	return c, nil
}

func (s *Service) readyClient(ctx context.Context, clientID uuid.UUID) (domain.Client, error) {
	c, err := s.client(ctx, clientID)
	if err != nil {
		return domain.Client{}, err
	}
	if !c.IsActive {
		return domain.Client{}, apperr.NotFound("client not found")
	}
	if !c.Config.Ready() {
		return domain.Client{}, apperr.Validation("client configuration is incomplete")
	}
	return c, nil
}

func toClientResponse(c domain.Client) transport.ClientResponse {
	cfg := c.Config
	if cfg.RequestBody == nil {
		cfg.RequestBody = []domain.FieldMapping{}
	}
	return transport.ClientResponse{ID: c.ID, Name: c.Name, Email: c.Email, Configuration: cfg}
}
