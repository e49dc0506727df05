package adapters

import (
	"context"
	"fmt"

	clientsservice "leadportal_backend/internal/clients/service"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/scheduler"

	"github.com/google/uuid"
)

// ForwardQueue adapts the asynq scheduler to the clients Enqueuer port.
type ForwardQueue struct {
	scheduler scheduler.ForwardScheduler
}

// NewForwardQueue returns nil when no scheduler is configured so the clients
// service reports deferred forwarding as unavailable.
func NewForwardQueue(s scheduler.ForwardScheduler) clientsservice.Enqueuer {
	if s == nil {
		return nil
	}
	return &ForwardQueue{scheduler: s}
}

func (q *ForwardQueue) EnqueueForward(ctx context.Context, req clientsservice.ForwardRequest) error {
	vendors := make([]string, 0, len(req.Actor.AssignedVendorIDs))
	for _, id := range req.Actor.AssignedVendorIDs {
		vendors = append(vendors, id.String())
	}
	return q.scheduler.EnqueueLeadForward(ctx, scheduler.LeadForwardPayload{
		ClientID:          req.ClientID.String(),
		LeadID:            req.LeadDisplayID,
		ActorID:           req.Actor.ID.String(),
		ActorRole:         string(req.Actor.Role),
		Capabilities:      req.Actor.Capabilities,
		AssignedVendorIDs: vendors,
	})
}

// ClientForwarder is the part of the clients service the worker runs.
type ClientForwarder interface {
	Forward(ctx context.Context, req clientsservice.ForwardRequest) error
}

// ForwardTaskRunner adapts the clients service to the scheduler worker.
type ForwardTaskRunner struct {
	clients ClientForwarder
}

// NewForwardTaskRunner creates the adapter.
func NewForwardTaskRunner(clients ClientForwarder) *ForwardTaskRunner {
	return &ForwardTaskRunner{clients: clients}
}

func (r *ForwardTaskRunner) ForwardLead(ctx context.Context, payload scheduler.LeadForwardPayload) error {
	clientID, err := uuid.Parse(payload.ClientID)
	if err != nil {
		return fmt.Errorf("parse client id: %w", err)
	}
	actorID, err := uuid.Parse(payload.ActorID)
	if err != nil {
		return fmt.Errorf("parse actor id: %w", err)
	}
	vendors := make([]uuid.UUID, 0, len(payload.AssignedVendorIDs))
	for _, raw := range payload.AssignedVendorIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse vendor id: %w", err)
		}
		vendors = append(vendors, id)
	}

	return r.clients.Forward(ctx, clientsservice.ForwardRequest{
		ClientID:      clientID,
		LeadDisplayID: payload.LeadID,
		Actor: domain.Actor{
			ID:                actorID,
			Role:              domain.Role(payload.ActorRole),
			Capabilities:      payload.Capabilities,
			AssignedVendorIDs: vendors,
		},
	})
}

var (
	_ clientsservice.Enqueuer = (*ForwardQueue)(nil)
	_ scheduler.LeadForwarder = (*ForwardTaskRunner)(nil)
)
