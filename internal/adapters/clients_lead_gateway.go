package adapters

import (
	"context"
	"errors"

	clientsservice "leadportal_backend/internal/clients/service"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/lifecycle"
	leadsrepo "leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/platform/apperr"

	"github.com/google/uuid"
)

// ClientsLeadGateway gives the clients context read access to lead answers and
// lets it record forwarding through the lead state machine.
type ClientsLeadGateway struct {
	leads     leadsrepo.LeadReader
	lifecycle *lifecycle.Service
}

// NewClientsLeadGateway creates the gateway.
func NewClientsLeadGateway(leads leadsrepo.LeadReader, lc *lifecycle.Service) *ClientsLeadGateway {
	return &ClientsLeadGateway{leads: leads, lifecycle: lc}
}

// LeadAnswers returns the answers of an active lead within the actor's scope.
func (g *ClientsLeadGateway) LeadAnswers(ctx context.Context, actor domain.Actor, displayID string) (map[uuid.UUID]string, error) {
	lead, err := g.leads.GetByDisplayID(ctx, displayID)
	if err != nil {
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}
	if !lead.IsActive {
		return nil, apperr.NotFound("lead not found")
	}
	if !scope.CanAct(actor, lead) {
		return nil, apperr.Forbidden("lead is outside your scope")
	}

	answers := make(map[uuid.UUID]string, len(lead.Responses))
	for _, r := range lead.Responses {
		answers[r.QuestionID] = r.Answer
	}
	return answers, nil
}

// RecordRecipient appends the client to the lead's forwarding history.
func (g *ClientsLeadGateway) RecordRecipient(ctx context.Context, actor domain.Actor, displayID string, clientID uuid.UUID) error {
	_, err := g.lifecycle.Update(ctx, displayID, actor, lifecycle.Changes{RecipientID: &clientID})
	return err
}

var _ clientsservice.LeadGateway = (*ClientsLeadGateway)(nil)
