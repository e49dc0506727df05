// Package handler serves the dashboard report endpoints.
package handler

import (
	"net/http"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/internal/reporting/daterange"
	"leadportal_backend/internal/reporting/service"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ReportQuery is the query string shared by every report.
type ReportQuery struct {
	Timeline   string `form:"timeline" validate:"omitempty,max=32"`
	StartDate  string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
	OwnerID    string `form:"id" validate:"omitempty,uuid"`
	Role       string `form:"role" validate:"omitempty,oneof=admin sub_admin vendor staff client"`
	CampaignID string `form:"campaignId" validate:"omitempty,uuid"`
}

type Handler struct {
	svc *service.Service
	val *validator.Validator
	loc *time.Location
}

// New creates a report handler. loc interprets date-only bounds.
func New(svc *service.Service, val *validator.Validator, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, val: val, loc: loc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.Categories)
	rg.GET("/distribution", h.Distribution)
	rg.GET("/trend", h.Trend)
	rg.GET("/overview", h.Overview)
}

func (h *Handler) Categories(c *gin.Context) {
	actor, req, ok := h.bind(c)
	if !ok {
		return
	}
	resp, err := h.svc.Categories(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Distribution(c *gin.Context) {
	actor, req, ok := h.bind(c)
	if !ok {
		return
	}
	resp, err := h.svc.StatusDistribution(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Trend(c *gin.Context) {
	actor, req, ok := h.bind(c)
	if !ok {
		return
	}
	resp, err := h.svc.Trend(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// Overview defaults to the current month when no timeline is given.
func (h *Handler) Overview(c *gin.Context) {
	actor, req, ok := h.bind(c)
	if !ok {
		return
	}
	if req.Timeline == "" {
		req.Timeline = daterange.ThisMonth
	}
	resp, err := h.svc.Overview(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) bind(c *gin.Context) (domain.Actor, service.Request, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return domain.Actor{}, service.Request{}, false
	}

	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return domain.Actor{}, service.Request{}, false
	}
	if httpkit.HandleError(c, h.val.Check(q)) {
		return domain.Actor{}, service.Request{}, false
	}

	req, err := h.toRequest(q)
	if httpkit.HandleError(c, err) {
		return domain.Actor{}, service.Request{}, false
	}
	return transport.ActorFromIdentity(identity), req, true
}

func (h *Handler) toRequest(q ReportQuery) (service.Request, error) {
	req := service.Request{Timeline: daterange.Timeline(q.Timeline)}

	var err error
	if req.Start, err = h.date(q.StartDate); err != nil {
		return service.Request{}, err
	}
	if req.End, err = h.date(q.EndDate); err != nil {
		return service.Request{}, err
	}
	if req.OwnerID, err = optionalUUID(q.OwnerID); err != nil {
		return service.Request{}, err
	}
	if req.CampaignID, err = optionalUUID(q.CampaignID); err != nil {
		return service.Request{}, err
	}
	if q.Role != "" {
		role := domain.Role(q.Role)
		req.Role = &role
	}
	return req, nil
}

func (h *Handler) date(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, h.loc)
	if err != nil {
		return nil, apperr.Validation("invalid date").WithDetails(map[string]string{"value": raw})
	}
	return &t, nil
}

func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("invalid id").WithDetails(map[string]string{"value": raw})
	}
	return &id, nil
}
