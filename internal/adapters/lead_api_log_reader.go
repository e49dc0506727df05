package adapters

import (
	"context"

	clientsdomain "leadportal_backend/internal/clients/domain"
	"leadportal_backend/internal/leads/management"
	"leadportal_backend/internal/leads/transport"
)

// ClientAPILogSource lists the forwarding calls recorded for a lead.
type ClientAPILogSource interface {
	ListAPILogs(ctx context.Context, displayID string) ([]clientsdomain.APILog, error)
}

// LeadAPILogReader adapts the clients api log to the lead detail view.
type LeadAPILogReader struct {
	source ClientAPILogSource
}

// NewLeadAPILogReader creates the adapter.
func NewLeadAPILogReader(source ClientAPILogSource) *LeadAPILogReader {
	return &LeadAPILogReader{source: source}
}

// ListByLead returns the calls oldest first.
func (r *LeadAPILogReader) ListByLead(ctx context.Context, displayID string) ([]transport.APILogResponse, error) {
	logs, err := r.source.ListAPILogs(ctx, displayID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.APILogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, transport.APILogResponse{
			ID:                 l.ID,
			ClientID:           l.ClientID,
			RequestBody:        l.RequestBody,
			Response:           l.Response,
			ResponseStatusCode: l.StatusCode,
			CreatedAt:          l.CreatedAt,
		})
	}
	return out, nil
}

var _ management.APILogReader = (*LeadAPILogReader)(nil)
