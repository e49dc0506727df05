// Package vendorapi accepts leads pushed by vendor systems through a signed
// token and maps their key/value payloads onto lead questions.
package vendorapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/lifecycle"
	leadsrepo "leadportal_backend/internal/leads/repository"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/sanitize"

	"github.com/google/uuid"
)

// LeadCreator is the interface for creating leads. Satisfied by lifecycle.Service.
type LeadCreator interface {
	Create(ctx context.Context, in lifecycle.CreateInput) (lifecycle.CreateResult, error)
}

// QuestionFinder resolves tagged questions.
type QuestionFinder interface {
	FindQuestionByTag(ctx context.Context, tag domain.QuestionTag) (domain.Question, error)
}

// DataItem is one key/value pair of a vendor payload.
type DataItem struct {
	Key   string `json:"key" validate:"required,max=128"`
	Value any    `json:"value"`
}

// Submission is an authenticated vendor payload.
type Submission struct {
	VendorID   uuid.UUID
	CampaignID string
	Data       []DataItem
}

// Service maps vendor payloads to lead creations.
type Service struct {
	fields    *FieldMap
	questions QuestionFinder
	creator   LeadCreator
	log       *logger.Logger
}

// NewService creates a new vendor API service.
func NewService(fields *FieldMap, questions QuestionFinder, creator LeadCreator, log *logger.Logger) *Service {
	return &Service{fields: fields, questions: questions, creator: creator, log: log}
}

// Submit creates a lead from a vendor payload. Unknown keys are ignored.
func (s *Service) Submit(ctx context.Context, sub Submission) (lifecycle.CreateResult, error) {
	if strings.TrimSpace(sub.CampaignID) == "" {
		return lifecycle.CreateResult{}, apperr.NotFound("Camp id not provided")
	}
	campaignID, err := uuid.Parse(strings.TrimSpace(sub.CampaignID))
	if err != nil {
		return lifecycle.CreateResult{}, apperr.NotFound("campaign not found")
	}

	responses, err := s.responses(ctx, sub.Data)
	if err != nil {
		return lifecycle.CreateResult{}, err
	}
	if len(responses) == 0 {
		return lifecycle.CreateResult{}, apperr.Validation("no recognised fields in data")
	}

	result, err := s.creator.Create(ctx, lifecycle.CreateInput{
		SubmitterID:    sub.VendorID,
		CampaignID:     campaignID,
		Responses:      responses,
		GeneratedByAPI: true,
	})
	if err != nil {
		return lifecycle.CreateResult{}, err
	}
	if !result.Bypassed {
		s.log.WithContext(ctx).Info("vendor lead created", "lead_id", result.Lead.DisplayID, "vendor_id", sub.VendorID)
	}
	return result, nil
}

func (s *Service) responses(ctx context.Context, data []DataItem) ([]domain.Response, error) {
	tagged := make(map[domain.QuestionTag]uuid.UUID)
	seen := make(map[uuid.UUID]bool, len(data))
	out := make([]domain.Response, 0, len(data))

	for _, item := range data {
		field, ok := s.fields.Lookup(item.Key)
		if !ok {
			continue
		}
		answer, ok := answerText(item.Value)
		if !ok {
			continue
		}

		questionID := field.QuestionID
		if field.Tag != "" {
			id, found := tagged[field.Tag]
			if !found {
				q, err := s.questions.FindQuestionByTag(ctx, field.Tag)
				if errors.Is(err, leadsrepo.ErrNotFound) {
					s.log.WithContext(ctx).Warn("vendor field has no question", "key", field.Key, "tag", field.Tag)
					continue
				}
				if err != nil {
					return nil, err
				}
				id = q.ID
				tagged[field.Tag] = id
			}
			questionID = id
		}

		if seen[questionID] {
			continue
		}
		seen[questionID] = true
		out = append(out, domain.Response{QuestionID: questionID, Answer: answer})
	}
	return out, nil
}

// answerText renders a JSON value as an answer. Null and blank values are
// dropped.
func answerText(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		text := sanitize.Text(val)
		return text, text != ""
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}
