package handler

import (
	"net/http"
	"strings"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/lifecycle"
	"leadportal_backend/internal/leads/management"
	"leadportal_backend/internal/leads/scope"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	dateLayout        = "2006-01-02"
)

// Handler serves the lead endpoints.
type Handler struct {
	lifecycle  *lifecycle.Service
	management *management.Service
	uploader   MediaUploader
	val        *validator.Validator
	loc        *time.Location
}

// New creates a lead handler. uploader may be nil, in which case submissions
// carrying media are rejected. loc interprets date-only list filters.
func New(lc *lifecycle.Service, mgmt *management.Service, uploader MediaUploader, val *validator.Validator, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{lifecycle: lc, management: mgmt, uploader: uploader, val: val, loc: loc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:leadId", h.Get)
	rg.GET("/:leadId/history", h.History)
	rg.PUT("/:leadId", h.Update)
	rg.DELETE("/:leadId", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	filters, err := h.listFilters(req)
	if httpkit.HandleError(c, err) {
		return
	}

	resp, err := h.management.List(c.Request.Context(), transport.ActorFromIdentity(identity), management.ListParams{
		Filters: filters,
		Page:    req.Page,
		Limit:   req.Limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.management.Get(c.Request.Context(), transport.ActorFromIdentity(identity), c.Param("leadId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) History(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	resp, err := h.management.History(c.Request.Context(), transport.ActorFromIdentity(identity), c.Param("leadId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	req, files, err := h.bindCreate(c)
	if httpkit.HandleError(c, err) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	media, err := h.uploadMedia(c, identity.UserID(), files)
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.lifecycle.Create(c.Request.Context(), lifecycle.CreateInput{
		SubmitterID: identity.UserID(),
		CampaignID:  req.CampaignID,
		Responses:   transport.ToDomainResponses(req.Responses),
		Remark:      req.Remark,
		TimeZone:    trimmed(req.TimeZone),
		Media:       media,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	if result.Bypassed {
		httpkit.OK(c, transport.CreateLeadResponse{Bypassed: true})
		return
	}
	lead := management.ToLeadResponse(result.Lead)
	httpkit.Created(c, transport.CreateLeadResponse{Lead: &lead})
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	lead, err := h.lifecycle.Update(c.Request.Context(), c.Param("leadId"), transport.ActorFromIdentity(identity), lifecycle.Changes{
		Status:      req.Status,
		Remark:      req.Remark,
		VerifierID:  req.Verifier,
		IsActive:    req.IsActive,
		Responses:   transport.ToDomainResponses(req.Responses),
		RecipientID: req.Recipient,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, management.ToLeadResponse(lead))
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.lifecycle.Deactivate(c.Request.Context(), c.Param("leadId"), transport.ActorFromIdentity(identity)); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "lead deleted"})
}

func (h *Handler) listFilters(req transport.ListLeadsRequest) (scope.Filters, error) {
	filters := scope.Filters{AssignedOnly: req.Assigned}

	if req.Status != "" {
		status, ok := domain.ParseStatus(req.Status)
		if !ok {
			return scope.Filters{}, apperr.Validation("unknown status")
		}
		filters.Status = &status
	}
	if req.UserType != "" {
		role := domain.Role(req.UserType)
		filters.Role = &role
	}
	if req.OwnerID != "" {
		id, err := uuid.Parse(req.OwnerID)
		if err != nil {
			return scope.Filters{}, apperr.Validation("invalid id")
		}
		filters.OwnerID = &id
	}
	if req.CampaignID != "" {
		id, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return scope.Filters{}, apperr.Validation("invalid campaignId")
		}
		filters.CampaignID = &id
	}
	if req.StartDate != "" {
		from, err := time.ParseInLocation(dateLayout, req.StartDate, h.loc)
		if err != nil {
			return scope.Filters{}, apperr.Validation("invalid startDate")
		}
		filters.CreatedFrom = &from
	}
	if req.EndDate != "" {
		day, err := time.ParseInLocation(dateLayout, req.EndDate, h.loc)
		if err != nil {
			return scope.Filters{}, apperr.Validation("invalid endDate")
		}
		to := day.AddDate(0, 0, 1).Add(-time.Millisecond)
		filters.CreatedTo = &to
	}
	return filters, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
