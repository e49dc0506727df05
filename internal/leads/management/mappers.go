package management

import (
	"slices"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/transport"

	"github.com/google/uuid"
)

func toUserRef(u domain.User) transport.UserRef {
	return transport.UserRef{UserID: u.ID, Name: u.Name, Email: u.Email, UserType: u.Role}
}

func submitterRef(r refs, id uuid.UUID) *transport.UserRef {
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	ref := toUserRef(u)
	return &ref
}

func campaignRef(r refs, id uuid.UUID) *transport.CampaignRef {
	c, ok := r.campaigns[id]
	if !ok {
		return nil
	}
	return &transport.CampaignRef{ID: c.ID, Title: c.Title, IsActive: c.IsActive}
}

// clientRefs skips clients that no longer exist in the directory.
func clientRefs(r refs, ids []uuid.UUID) []transport.UserRef {
	out := make([]transport.UserRef, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, transport.UserRef{UserID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out
}

func media(l domain.Lead) []domain.Media {
	if l.Media == nil {
		return []domain.Media{}
	}
	return slices.Clone(l.Media)
}

func toLeadResponse(l domain.Lead, r refs) transport.LeadResponse {
	answers := make([]transport.AnswerResponse, 0, len(l.Responses))
	for _, resp := range l.Responses {
		answers = append(answers, transport.AnswerResponse{QuestionID: resp.QuestionID, Response: resp.Answer})
	}

	return transport.LeadResponse{
		ID:             l.ID,
		LeadID:         l.DisplayID,
		Status:         l.Status,
		Remark:         l.Remark,
		Verifier:       l.VerifierID,
		Responses:      answers,
		Campaign:       campaignRef(r, l.CampaignID),
		Clients:        clientRefs(r, l.ClientIDs),
		CreatedBy:      submitterRef(r, l.SubmitterID),
		TimeZone:       l.TimeZone,
		Media:          media(l),
		GeneratedByAPI: l.GeneratedByAPI,
		LeftFunnelAt:   l.LeftFunnelAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// ToLeadResponse renders a lead without resolving its references.
func ToLeadResponse(l domain.Lead) transport.LeadResponse {
	return toLeadResponse(l, refs{})
}

func toLeadDetailResponse(l domain.Lead, r refs, questions map[uuid.UUID]domain.Question, logs []transport.APILogResponse) transport.LeadDetailResponse {
	answers := make([]transport.DetailedAnswerResponse, 0, len(l.Responses))
	for _, resp := range l.Responses {
		q := questions[resp.QuestionID]
		answers = append(answers, transport.DetailedAnswerResponse{
			QuestionID:    resp.QuestionID,
			QuestionTitle: q.Title,
			QuestionType:  q.Type,
			Response:      resp.Answer,
		})
	}

	return transport.LeadDetailResponse{
		ID:           l.ID,
		LeadID:       l.DisplayID,
		Status:       l.Status,
		Remark:       l.Remark,
		Verifier:     l.VerifierID,
		Responses:    answers,
		Campaign:     campaignRef(r, l.CampaignID),
		Clients:      clientRefs(r, l.ClientIDs),
		CreatedBy:    submitterRef(r, l.SubmitterID),
		TimeZone:     l.TimeZone,
		Media:        media(l),
		LeftFunnelAt: l.LeftFunnelAt,
		CreatedAt:    l.CreatedAt,
		APILogs:      logs,
	}
}

func toHistoryResponse(e domain.HistoryEntry) transport.HistoryResponse {
	return transport.HistoryResponse{
		ID:                e.ID,
		LeadID:            e.LeadDisplayID,
		UpdatedBy:         e.ActorID,
		UpdateType:        e.UpdateType,
		Note:              e.Note,
		PreviousStatus:    e.PreviousStatus,
		CurrentStatus:     e.NewStatus,
		Recipient:         e.RecipientID,
		ChangedBySubAdmin: e.ChangedBySubAdmin,
		CreatedAt:         e.CreatedAt,
	}
}
