// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller as asserted by the access token.
// Handlers read it instead of the raw gin context values.
type Identity interface {
	UserID() uuid.UUID
	Role() string
	Capabilities() []string
	AssignedVendorIDs() []uuid.UUID
	HasCapability(capability string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	capabilities  []string
	vendorIDs     []uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID              { return i.userID }
func (i *identity) Role() string                   { return i.role }
func (i *identity) Capabilities() []string         { return i.capabilities }
func (i *identity) AssignedVendorIDs() []uuid.UUID { return i.vendorIDs }
func (i *identity) IsAuthenticated() bool          { return i.authenticated }

func (i *identity) HasCapability(capability string) bool {
	for _, c := range i.capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	id := &identity{userID: uid, authenticated: true}
	if role, ok := c.Get(ContextRoleKey); ok {
		id.role, _ = role.(string)
	}
	if caps, ok := c.Get(ContextCapabilitiesKey); ok {
		id.capabilities, _ = caps.([]string)
	}
	if vendors, ok := c.Get(ContextVendorIDsKey); ok {
		id.vendorIDs, _ = vendors.([]uuid.UUID)
	}
	return id
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		c.Abort()
		return nil
	}
	return id
}
