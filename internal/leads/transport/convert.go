package transport

import (
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/httpkit"
)

// ActorFromIdentity converts the verified token identity into a domain actor.
func ActorFromIdentity(id httpkit.Identity) domain.Actor {
	return domain.Actor{
		ID:                id.UserID(),
		Role:              domain.Role(id.Role()),
		Capabilities:      id.Capabilities(),
		AssignedVendorIDs: id.AssignedVendorIDs(),
	}
}

// ToDomainResponses keeps batch positions so validation errors can point at them.
func ToDomainResponses(in []ResponseRequest) []domain.Response {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Response, len(in))
	for i, r := range in {
		out[i] = domain.Response{QuestionID: r.QuestionID, Answer: r.Response}
	}
	return out
}
