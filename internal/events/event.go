// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadportal_backend/platform/events"
	"leadportal_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Subscriber  = events.Subscriber
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

type InMemoryBus = events.InMemoryBus

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus every module publishes on.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is stored.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	DisplayID      string    `json:"displayId"`
	SubmitterID    uuid.UUID `json:"submitterId"`
	CampaignID     uuid.UUID `json:"campaignId"`
	GeneratedByAPI bool      `json:"generatedByApi"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published after every successful update call.
type LeadUpdated struct {
	BaseEvent
	DisplayID string    `json:"displayId"`
	ActorID   uuid.UUID `json:"actorId"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadStatusChanged is published when an update carried a status.
type LeadStatusChanged struct {
	BaseEvent
	DisplayID      string    `json:"displayId"`
	ActorID        uuid.UUID `json:"actorId"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadLeftFunnel is published when a lead is handed to an attorney.
type LeadLeftFunnel struct {
	BaseEvent
	DisplayID string    `json:"displayId"`
	ActorID   uuid.UUID `json:"actorId"`
	LeftAt    time.Time `json:"leftAt"`
}

func (e LeadLeftFunnel) EventName() string { return "leads.lead.left_funnel" }

// LeadForwarded is published when a client is added to the forwarding history.
type LeadForwarded struct {
	BaseEvent
	DisplayID string    `json:"displayId"`
	ClientID  uuid.UUID `json:"clientId"`
	ActorID   uuid.UUID `json:"actorId"`
}

func (e LeadForwarded) EventName() string { return "leads.lead.forwarded" }

// LeadDeactivated is published when a lead is soft-deleted.
type LeadDeactivated struct {
	BaseEvent
	DisplayID string    `json:"displayId"`
	ActorID   uuid.UUID `json:"actorId"`
}

func (e LeadDeactivated) EventName() string { return "leads.lead.deactivated" }

// MutationEventNames lists every event that changes reportable lead data.
func MutationEventNames() []string {
	return []string{
		LeadCreated{}.EventName(),
		LeadUpdated{}.EventName(),
		LeadDeactivated{}.EventName(),
	}
}
