package handler

import (
	"errors"
	"io"
	"net/http"

	"leadportal_backend/internal/clients/domain"
	"leadportal_backend/internal/clients/service"
	"leadportal_backend/internal/clients/transport"
	leadstransport "leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest  = "invalid request"
	msgInvalidClientID = "invalid client id"
	msgForwardFailed   = "client endpoint did not accept the lead"
)

// Handler serves client forwarding endpoints.
type Handler struct {
	svc *service.Service
}

// New creates a clients handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:clientId", h.Get)
	rg.PUT("/:clientId/config", h.SaveConfig)
	rg.GET("/:clientId/leads/:leadId/preview", h.Preview)
	rg.POST("/:clientId/leads/:leadId/send", h.Send)
}

func (h *Handler) List(c *gin.Context) {
	resp, err := h.svc.ListClients(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetClient(c.Request.Context(), clientID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) SaveConfig(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	var req domain.Config
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.SaveConfig(c.Request.Context(), clientID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Preview(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Preview(c.Request.Context(), leadstransport.ActorFromIdentity(identity), clientID, c.Param("leadId"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Send(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	var req transport.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	actor := leadstransport.ActorFromIdentity(identity)
	leadID := c.Param("leadId")

	if req.Deferred {
		if httpkit.HandleError(c, h.svc.Enqueue(c.Request.Context(), actor, clientID, leadID)) {
			return
		}
		httpkit.JSON(c, http.StatusAccepted, transport.QueuedResponse{Queued: true})
		return
	}

	resp, err := h.svc.Send(c.Request.Context(), actor, clientID, leadID)
	var fwdErr *service.ForwardError
	if errors.As(err, &fwdErr) {
		httpkit.Error(c, http.StatusBadGateway, msgForwardFailed, transport.SendResponse{
			StatusCode: fwdErr.StatusCode,
			Response:   fwdErr.Body,
		})
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func parseClientID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidClientID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
