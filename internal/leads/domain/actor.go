package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Role is a user's account type.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSubAdmin Role = "sub_admin"
	RoleVendor   Role = "vendor"
	RoleStaff    Role = "staff"
	RoleClient   Role = "client"
)

// Capability tags carried by staff accounts.
const (
	CapabilityVerifier       = "verifier"
	CapabilityLeadManagement = "lead_management"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleVendor, RoleStaff, RoleClient:
		return true
	}
	return false
}

// CanList reports whether the role may list or aggregate leads at all.
func (r Role) CanList() bool {
	switch r {
	case RoleAdmin, RoleSubAdmin, RoleVendor, RoleStaff:
		return true
	}
	return false
}

// IsElevated reports whether the role may soft-delete leads.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSubAdmin
}

// Actor is the verified caller of a lead operation.
type Actor struct {
	ID                uuid.UUID
	Role              Role
	Capabilities      []string
	AssignedVendorIDs []uuid.UUID
}

// HasCapability reports whether the actor carries the capability tag.
func (a Actor) HasCapability(capability string) bool {
	return slices.Contains(a.Capabilities, capability)
}

// IsVerifier reports whether the actor is a staff member who verifies leads.
func (a Actor) IsVerifier() bool {
	return a.Role == RoleStaff && a.HasCapability(CapabilityVerifier)
}
