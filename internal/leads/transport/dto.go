package transport

import (
	"encoding/json"
	"time"

	"leadportal_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs

type ResponseRequest struct {
	QuestionID uuid.UUID `json:"questionId"`
	Response   string    `json:"response"`
}

type CreateLeadRequest struct {
	CampaignID uuid.UUID         `json:"campaignId" form:"campaignId" validate:"required"`
	Responses  []ResponseRequest `json:"responses" validate:"required,min=1,max=200"`
	Remark     string            `json:"remark,omitempty" form:"remark" validate:"max=2000"`
	TimeZone   *string           `json:"timeZone,omitempty" form:"timeZone" validate:"omitempty,iana_tz"`
}

type UpdateLeadRequest struct {
	Status    *string           `json:"status,omitempty" validate:"omitempty,max=64"`
	Remark    *string           `json:"remark,omitempty" validate:"omitempty,max=2000"`
	Verifier  *uuid.UUID        `json:"verifier,omitempty"`
	IsActive  *bool             `json:"isActive,omitempty"`
	Responses []ResponseRequest `json:"responses,omitempty" validate:"max=200"`
	Recipient *uuid.UUID        `json:"recipient,omitempty"`
}

type ListLeadsRequest struct {
	Page       int    `form:"page" validate:"min=0"`
	Limit      int    `form:"limit" validate:"min=0,max=100"`
	Status     string `form:"status" validate:"max=64"`
	UserType   string `form:"userType" validate:"omitempty,oneof=admin sub_admin vendor staff client"`
	OwnerID    string `form:"id" validate:"omitempty,uuid"`
	Assigned   bool   `form:"assigned"`
	CampaignID string `form:"campaignId" validate:"omitempty,uuid"`
	StartDate  string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs

type UserRef struct {
	UserID   uuid.UUID   `json:"userId"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	UserType domain.Role `json:"userType,omitempty"`
}

type CampaignRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	IsActive bool      `json:"isActive"`
}

type AnswerResponse struct {
	QuestionID uuid.UUID `json:"questionId"`
	Response   string    `json:"response"`
}

type DetailedAnswerResponse struct {
	QuestionID    uuid.UUID `json:"questionId"`
	QuestionTitle string    `json:"questionTitle"`
	QuestionType  string    `json:"questionType"`
	Response      string    `json:"response"`
}

type LeadResponse struct {
	ID             uuid.UUID        `json:"id"`
	LeadID         string           `json:"leadId"`
	Status         domain.Status    `json:"status"`
	Remark         string           `json:"remark"`
	Verifier       *uuid.UUID       `json:"verifier,omitempty"`
	Responses      []AnswerResponse `json:"responses"`
	Campaign       *CampaignRef     `json:"campaign,omitempty"`
	Clients        []UserRef        `json:"clients"`
	CreatedBy      *UserRef         `json:"createdBy,omitempty"`
	TimeZone       *string          `json:"timeZone,omitempty"`
	Media          []domain.Media   `json:"media"`
	GeneratedByAPI bool             `json:"generatedByAPI"`
	LeftFunnelAt   *time.Time       `json:"leftFunnelAt,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type LeadListResponse struct {
	TotalLeads  int            `json:"totalLeads"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Leads       []LeadResponse `json:"leads"`
}

type APILogResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ClientID           uuid.UUID       `json:"clientId"`
	RequestBody        json.RawMessage `json:"requestBody"`
	Response           json.RawMessage `json:"response,omitempty"`
	ResponseStatusCode int             `json:"responseStatusCode"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type LeadDetailResponse struct {
	ID           uuid.UUID                `json:"id"`
	LeadID       string                   `json:"leadId"`
	Status       domain.Status            `json:"status"`
	Remark       string                   `json:"remark"`
	Verifier     *uuid.UUID               `json:"verifier,omitempty"`
	Responses    []DetailedAnswerResponse `json:"responses"`
	Campaign     *CampaignRef             `json:"campaign,omitempty"`
	Clients      []UserRef                `json:"clients"`
	CreatedBy    *UserRef                 `json:"createdBy,omitempty"`
	TimeZone     *string                  `json:"timeZone,omitempty"`
	Media        []domain.Media           `json:"media"`
	LeftFunnelAt *time.Time               `json:"leftFunnelAt,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
	APILogs      []APILogResponse         `json:"apiLogs"`
}

type HistoryResponse struct {
	ID                uuid.UUID         `json:"id"`
	LeadID            string            `json:"leadId"`
	UpdatedBy         uuid.UUID         `json:"updatedBy"`
	UpdateType        domain.UpdateType `json:"updateType"`
	Note              string            `json:"note"`
	PreviousStatus    domain.Status     `json:"previousStatus"`
	CurrentStatus     domain.Status     `json:"currentStatus"`
	Recipient         *uuid.UUID        `json:"recipient,omitempty"`
	ChangedBySubAdmin bool              `json:"changedBySubAdmin"`
	CreatedAt         time.Time         `json:"createdAt"`
}

type HistoryListResponse struct {
	Items []HistoryResponse `json:"items"`
}

// CreateLeadResponse is returned by create. Bypassed submissions were accepted
// without being stored.
type CreateLeadResponse struct {
	Lead     *LeadResponse `json:"lead,omitempty"`
	Bypassed bool          `json:"bypassed"`
}
