package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Client is a client account together with its forwarding configuration.
type Client struct {
	ID       uuid.UUID
	Name     string
	Email    string
	IsActive bool
	Config   Config
}

// ResolvedField is a mapping with the value that will be sent for it.
type ResolvedField struct {
	Key        string     `json:"key"`
	QuestionID *uuid.UUID `json:"question_id,omitempty"`
	Default    *Value     `json:"default,omitempty"`
	DateFormat DateFormat `json:"date_format,omitempty"`
	Response   Value      `json:"response"`
}

// Resolve fills every mapping from the lead's answers. A truthy default wins
// over the answer. A date format reformats answers that parse as dates and
// leaves the others untouched. Unanswered questions resolve to null.
func Resolve(cfg Config, answers map[uuid.UUID]string) []ResolvedField {
	out := make([]ResolvedField, 0, len(cfg.RequestBody))
	for _, m := range cfg.RequestBody {
		field := ResolvedField{Key: m.Key, QuestionID: m.QuestionID, Default: m.Default, DateFormat: m.DateFormat}

		answer, answered := "", false
		if m.QuestionID != nil {
			answer, answered = answers[*m.QuestionID]
		}
		if answered {
			field.Response = String(answer)
			if m.DateFormat != "" {
				if t, ok := ParseAnswerDate(answer); ok {
					if formatted, err := m.DateFormat.Format(t); err == nil {
						field.Response = String(formatted)
					}
				}
			}
		}

		if m.Default != nil && m.Default.Truthy() {
			field.Response = *m.Default
		}
		out = append(out, field)
	}
	return out
}

// Payload is the body posted to a client endpoint.
type Payload struct {
	StatusFlag  string          `json:"statusFlag"`
	RequestBody []ResolvedField `json:"requestBody"`
}

// NewPayload wraps resolved fields for sending.
func NewPayload(fields []ResolvedField) Payload {
	if fields == nil {
		fields = []ResolvedField{}
	}
	return Payload{StatusFlag: "SUCCESS", RequestBody: fields}
}

// APILog is one recorded outbound call.
type APILog struct {
	ID            uuid.UUID
	LeadDisplayID string
	ClientID      uuid.UUID
	RequestBody   json.RawMessage
	Response      json.RawMessage
	StatusCode    int
	CreatedAt     time.Time
}
