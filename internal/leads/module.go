// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"time"

	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/leads/dedup"
	"leadportal_backend/internal/leads/handler"
	"leadportal_backend/internal/leads/lifecycle"
	"leadportal_backend/internal/leads/management"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	store      repository.Store
	handler    *handler.Handler
	lifecycle  *lifecycle.Service
	management *management.Service
	resolver   *scope.Resolver
}

// Deps are the collaborators the leads module is built from.
type Deps struct {
	Store     repository.Store
	EventBus  events.Bus
	Uploader  handler.MediaUploader
	Validator *validator.Validator
	Config    config.IntakeConfig
	Location  *time.Location
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(deps Deps) *Module {
	checker := dedup.New(deps.Store, deps.Store, dedup.Options{
		Strict:      deps.Config.GetLeadIntakeStrict(),
		PhoneRegion: deps.Config.GetPhoneDefaultRegion(),
	})
	resolver := scope.NewResolver(deps.Store)

	lifecycleSvc := lifecycle.New(deps.Store, checker, deps.EventBus, deps.Metrics, deps.Logger)
	mgmtSvc := management.New(deps.Store, resolver, nil)
	h := handler.New(lifecycleSvc, mgmtSvc, deps.Uploader, deps.Validator, deps.Location)

	return &Module{
		store:      deps.Store,
		handler:    h,
		lifecycle:  lifecycleSvc,
		management: mgmtSvc,
		resolver:   resolver,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Store returns the lead persistence the module was built on.
func (m *Module) Store() repository.Store {
	return m.store
}

// Lifecycle returns the lead state machine for other modules.
func (m *Module) Lifecycle() *lifecycle.Service {
	return m.lifecycle
}

// ManagementService returns the lead read service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// Resolver returns the visibility resolver shared with reporting.
func (m *Module) Resolver() *scope.Resolver {
	return m.resolver
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
