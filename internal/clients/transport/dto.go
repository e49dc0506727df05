package transport

import (
	"encoding/json"

	"leadportal_backend/internal/clients/domain"

	"github.com/google/uuid"
)

type ClientResponse struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Configuration domain.Config `json:"configuration"`
}

type ClientListResponse struct {
	Items []ClientResponse `json:"items"`
}

type PreviewConfiguration struct {
	Path        string                 `json:"path"`
	Method      string                 `json:"method"`
	Headers     map[string]string      `json:"headers,omitempty"`
	RequestBody []domain.ResolvedField `json:"requestBody"`
}

type PreviewResponse struct {
	ClientID      uuid.UUID            `json:"clientId"`
	LeadID        string               `json:"leadId"`
	Configuration PreviewConfiguration `json:"configuration"`
}

type SendRequest struct {
	Deferred bool `json:"deferred"`
}

type SendResponse struct {
	StatusCode int             `json:"statusCode"`
	Response   json.RawMessage `json:"response,omitempty"`
}

type QueuedResponse struct {
	Queued bool `json:"queued"`
}
