package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const displayIDPrefix = "lead-"

// MediaType classifies an attachment.
type MediaType string

const (
	MediaDoc       MediaType = "doc"
	MediaRecording MediaType = "recording"
)

// MediaTypeFor classifies by MIME: application/* is a document, anything else a recording.
func MediaTypeFor(contentType string) MediaType {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/") {
		return MediaDoc
	}
	return MediaRecording
}

// Media is an uploaded attachment.
type Media struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

// Response is one answered question.
type Response struct {
	QuestionID uuid.UUID `json:"questionId"`
	Answer     string    `json:"answer"`
}

// Lead is a submitted case progressing through verification and client hand-off.
type Lead struct {
	ID             uuid.UUID
	DisplayID      string
	SubmitterID    uuid.UUID
	CampaignID     uuid.UUID
	Responses      []Response
	Status         Status
	Remark         string
	IsActive       bool
	VerifierID     *uuid.UUID
	ClientIDs      []uuid.UUID
	TimeZone       *string
	LeftFunnelAt   *time.Time
	Media          []Media
	GeneratedByAPI bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Answer returns the answer recorded for questionID.
func (l Lead) Answer(questionID uuid.UUID) (string, bool) {
	for _, r := range l.Responses {
		if r.QuestionID == questionID {
			return r.Answer, true
		}
	}
	return "", false
}

// ForwardedTo reports whether the lead was already sent to clientID.
func (l Lead) ForwardedTo(clientID uuid.UUID) bool {
	return slices.Contains(l.ClientIDs, clientID)
}

// FormatDisplayID renders the human-readable id for sequence number n.
func FormatDisplayID(n int64) string {
	return fmt.Sprintf("%s%d", displayIDPrefix, n)
}

// ParseDisplayID extracts the sequence number from a display id.
func ParseDisplayID(id string) (int64, bool) {
	raw, ok := strings.CutPrefix(id, displayIDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
