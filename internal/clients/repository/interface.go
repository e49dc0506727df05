// Package repository persists client forwarding configurations and the log
// of outbound calls made for leads.
package repository

import (
	"context"
	"errors"

	"leadportal_backend/internal/clients/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the client account does not exist.
var ErrNotFound = errors.New("client not found")

// ClientReader resolves client accounts.
type ClientReader interface {
	// ListForwardingClients returns active clients with a path and method configured.
	ListForwardingClients(ctx context.Context) ([]domain.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (domain.Client, error)
}

// ConfigWriter stores a client's forwarding configuration.
type ConfigWriter interface {
	SaveConfig(ctx context.Context, clientID uuid.UUID, cfg domain.Config) error
}

// APILogStore records outbound calls.
type APILogStore interface {
	InsertAPILog(ctx context.Context, log domain.APILog) error
	ListAPILogsByLead(ctx context.Context, displayID string) ([]domain.APILog, error)
}

// Store composes every clients persistence concern.
type Store interface {
	ClientReader
	ConfigWriter
	APILogStore
}
