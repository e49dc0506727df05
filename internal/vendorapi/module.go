package vendorapi

import (
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

// Module is the vendor intake module implementing http.Module.
type Module struct {
	handler   *Handler
	logs      LogStore
	secret    string
	perMinute int
	log       *logger.Logger
}

// Deps are the collaborators the vendor module is built from.
type Deps struct {
	Fields    *FieldMap
	Questions QuestionFinder
	Creator   LeadCreator
	Logs      LogStore
	Secret    string
	PerMinute int
	Validator *validator.Validator
	Logger    *logger.Logger
}

// NewModule creates the vendor intake module.
func NewModule(deps Deps) *Module {
	svc := NewService(deps.Fields, deps.Questions, deps.Creator, deps.Logger)
	return &Module{
		handler:   NewHandler(svc, deps.Validator),
		logs:      deps.Logs,
		secret:    deps.Secret,
		perMinute: deps.PerMinute,
		log:       deps.Logger,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "vendorapi"
}

// RegisterRoutes mounts the vendor endpoint. Without a signing secret the
// endpoint stays unmounted.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.secret == "" {
		m.log.Warn("VENDOR_API_SECRET not set, vendor intake disabled")
		return
	}

	group := ctx.V1.Group("/vendor")
	if m.perMinute > 0 {
		group.Use(httpkit.NewPerMinuteLimiter(m.perMinute, m.log).RateLimit())
	}
	group.Use(AuditMiddleware(m.logs, m.log))
	group.Use(TokenAuthMiddleware(m.secret))
	group.POST("/leads", m.handler.HandleSubmit)
}

var _ apphttp.Module = (*Module)(nil)
