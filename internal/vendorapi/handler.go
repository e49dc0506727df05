package vendorapi

import (
	"leadportal_backend/internal/leads/management"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmitRequest is the vendor payload.
type SubmitRequest struct {
	Data []DataItem `json:"data" validate:"required,min=1,max=200,dive"`
}

// Handler exposes the vendor intake endpoint.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new vendor API handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// HandleSubmit creates a lead from an authenticated vendor payload.
func (h *Handler) HandleSubmit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperr.Validation("invalid request body"))
		return
	}
	if err := h.val.Check(req); err != nil {
		h.fail(c, err)
		return
	}

	vendorID, _ := c.Get(contextVendorIDKey)
	id, _ := vendorID.(uuid.UUID)
	result, err := h.svc.Submit(c.Request.Context(), Submission{
		VendorID:   id,
		CampaignID: c.GetString(contextCampaignIDKey),
		Data:       req.Data,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if result.Bypassed {
		httpkit.OK(c, transport.CreateLeadResponse{Bypassed: true})
		return
	}
	lead := management.ToLeadResponse(result.Lead)
	httpkit.Created(c, transport.CreateLeadResponse{Lead: &lead})
}

func (h *Handler) fail(c *gin.Context, err error) {
	c.Set(contextAuditErrorKey, err.Error())
	httpkit.HandleError(c, err)
}
