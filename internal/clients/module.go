// Package clients provides the client forwarding bounded context module.
package clients

import (
	"time"

	"leadportal_backend/internal/clients/forwarder"
	"leadportal_backend/internal/clients/handler"
	"leadportal_backend/internal/clients/repository"
	"leadportal_backend/internal/clients/service"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// Deps are the collaborators the clients module is built from.
type Deps struct {
	Store          repository.Store
	Leads          service.LeadGateway
	Enqueuer       service.Enqueuer
	Validator      *validator.Validator
	ForwardTimeout time.Duration
	Metrics        *metrics.Metrics
	Logger         *logger.Logger
}

// NewModule creates the clients module. Deps.Enqueuer may be nil.
func NewModule(deps Deps) *Module {
	sender := forwarder.New(deps.ForwardTimeout, deps.Logger)
	svc := service.New(deps.Store, deps.Leads, sender, deps.Enqueuer, deps.Validator, deps.Metrics, deps.Logger)
	return &Module{service: svc, handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Service exposes forwarding to the worker and the lead detail view.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts client routes under the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/clients"))
}

var _ apphttp.Module = (*Module)(nil)
