// Package reporting provides the dashboard reporting module.
package reporting

import (
	"time"

	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/internal/reporting/cache"
	"leadportal_backend/internal/reporting/daterange"
	"leadportal_backend/internal/reporting/handler"
	"leadportal_backend/internal/reporting/service"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

// Deps are the collaborators the reporting module is built from.
type Deps struct {
	Store     repository.AggregateReader
	Resolver  service.ScopeResolver
	Location  *time.Location
	Cache     *cache.RedisCache
	EventBus  events.Bus
	Validator *validator.Validator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// Module is the reporting module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the report service and subscribes the cache to lead mutations.
func NewModule(deps Deps) *Module {
	ranges := daterange.NewBuilder(deps.Location, time.Now)
	svc := service.New(deps.Store, deps.Resolver, ranges, deps.Cache, deps.Metrics, deps.Logger)
	if deps.Cache != nil && deps.EventBus != nil {
		deps.Cache.Subscribe(deps.EventBus)
	}
	return &Module{
		handler: handler.New(svc, deps.Validator, deps.Location),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reporting"
}

// Service returns the report service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the dashboard routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/dashboard"))
}

var _ apphttp.Module = (*Module)(nil)
