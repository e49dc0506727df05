// Package scope turns an actor and listing filters into the lead query that
// actor is allowed to see. Listing and reporting both resolve through here so
// their counts always agree.
package scope

import (
	"context"
	"slices"
	"time"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/apperr"

	"github.com/google/uuid"
)

// Filters are the caller-supplied narrowing options.
type Filters struct {
	Status     *domain.Status
	CampaignID *uuid.UUID
	OwnerID    *uuid.UUID
	// Role restricts submitters to users with that role when OwnerID is unset.
	Role *domain.Role
	// AssignedOnly asks for the verifier queue instead of own submissions.
	AssignedOnly bool
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// RoleMembers lists the ids of users holding a role.
type RoleMembers interface {
	ListUserIDsByRole(ctx context.Context, role domain.Role) ([]uuid.UUID, error)
}

// input is everything a stage may look at. RoleOwnerIDs is resolved before the
// pipeline runs so every stage stays pure.
type input struct {
	actor        domain.Actor
	filters      Filters
	roleOwnerIDs []uuid.UUID
}

// stage narrows a query. Later stages override earlier ones.
type stage func(in input, q domain.LeadQuery) domain.LeadQuery

var pipeline = []stage{
	baseStage,
	roleFilterStage,
	ownSubmissionsStage,
	assignedVerifierStage,
	subAdminStage,
}

// Resolver builds lead queries for actors.
type Resolver struct {
	members RoleMembers
}

// NewResolver creates a Resolver.
func NewResolver(members RoleMembers) *Resolver {
	return &Resolver{members: members}
}

// Resolve returns the query for listing or aggregating leads as actor.
func (r *Resolver) Resolve(ctx context.Context, actor domain.Actor, filters Filters) (domain.LeadQuery, error) {
	if !actor.Role.CanList() {
		return domain.LeadQuery{}, apperr.Forbidden("role may not list leads").WithOp("scope.Resolve")
	}

	in := input{actor: actor, filters: filters}
	if needsRoleMembers(actor, filters) {
		ids, err := r.members.ListUserIDsByRole(ctx, *filters.Role)
		if err != nil {
			return domain.LeadQuery{}, err
		}
		in.roleOwnerIDs = ids
	}

	return run(in), nil
}

// CanAct reports whether actor may mutate lead. It applies the same stages to
// the single lead, accepting it through either the listing view or, for
// verifiers, the assigned queue.
func CanAct(actor domain.Actor, lead domain.Lead) bool {
	if !actor.Role.CanList() {
		return false
	}
	if run(input{actor: actor}).Matches(lead) {
		return true
	}
	if actor.IsVerifier() {
		return run(input{actor: actor, filters: Filters{AssignedOnly: true}}).Matches(lead)
	}
	return false
}

func run(in input) domain.LeadQuery {
	var q domain.LeadQuery
	for _, s := range pipeline {
		q = s(in, q)
	}
	return q
}

func needsRoleMembers(actor domain.Actor, f Filters) bool {
	if f.Role == nil || f.OwnerID != nil {
		return false
	}
	return actor.Role != domain.RoleVendor && actor.Role != domain.RoleStaff
}

func baseStage(in input, q domain.LeadQuery) domain.LeadQuery {
	f := in.filters
	q.Status = f.Status
	q.CampaignID = f.CampaignID
	q.CreatedFrom = f.CreatedFrom
	q.CreatedTo = f.CreatedTo
	if f.OwnerID != nil {
		q.OwnerIDs = []uuid.UUID{*f.OwnerID}
	}
	return q
}

func roleFilterStage(in input, q domain.LeadQuery) domain.LeadQuery {
	if in.filters.Role == nil || in.filters.OwnerID != nil {
		return q
	}
	owners := slices.Clone(in.roleOwnerIDs)
	if owners == nil {
		owners = []uuid.UUID{}
	}
	q.OwnerIDs = owners
	return q
}

func ownSubmissionsStage(in input, q domain.LeadQuery) domain.LeadQuery {
	switch in.actor.Role {
	case domain.RoleVendor, domain.RoleStaff:
		q.OwnerIDs = []uuid.UUID{in.actor.ID}
	}
	return q
}

func assignedVerifierStage(in input, q domain.LeadQuery) domain.LeadQuery {
	if !in.filters.AssignedOnly || !in.actor.IsVerifier() {
		return q
	}
	verifier := in.actor.ID
	q.OwnerIDs = nil
	q.VerifierID = &verifier
	q.ExcludeStatuses = domain.OnlyAdminStatuses()
	q.Status = in.filters.Status
	return q
}

func subAdminStage(in input, q domain.LeadQuery) domain.LeadQuery {
	if in.actor.Role != domain.RoleSubAdmin {
		return q
	}
	assigned := in.actor.AssignedVendorIDs
	owners := make([]uuid.UUID, 0, len(assigned))
	if q.OwnerIDs == nil {
		owners = append(owners, assigned...)
	} else {
		for _, id := range q.OwnerIDs {
			if slices.Contains(assigned, id) {
				owners = append(owners, id)
			}
		}
	}
	q.OwnerIDs = owners
	if len(owners) == 0 {
		q.Empty = true
	}
	return q
}
