package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskLeadForward = "clients.lead.forward"

// LeadForwardPayload carries a deferred forward together with the identity of
// the user who asked for it, so the worker forwards under the same scope.
type LeadForwardPayload struct {
	ClientID          string   `json:"clientId"`
	LeadID            string   `json:"leadId"`
	ActorID           string   `json:"actorId"`
	ActorRole         string   `json:"actorRole"`
	Capabilities      []string `json:"capabilities,omitempty"`
	AssignedVendorIDs []string `json:"assignedVendorIds,omitempty"`
}

// Validate checks the ids before the task is queued or run.
func (p LeadForwardPayload) Validate() error {
	if _, err := uuid.Parse(p.ClientID); err != nil {
		return fmt.Errorf("client id: %w", err)
	}
	if _, err := uuid.Parse(p.ActorID); err != nil {
		return fmt.Errorf("actor id: %w", err)
	}
	if p.LeadID == "" {
		return fmt.Errorf("lead id is required")
	}
	for _, v := range p.AssignedVendorIDs {
		if _, err := uuid.Parse(v); err != nil {
			return fmt.Errorf("assigned vendor id: %w", err)
		}
	}
	return nil
}

func NewLeadForwardTask(payload LeadForwardPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadForward, data), nil
}

func ParseLeadForwardPayload(task *asynq.Task) (LeadForwardPayload, error) {
	var payload LeadForwardPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadForwardPayload{}, err
	}
	if err := payload.Validate(); err != nil {
		return LeadForwardPayload{}, err
	}
	return payload, nil
}
