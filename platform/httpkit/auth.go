package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	errMissingToken = "missing token"
	errInvalidToken = "invalid token"

	tokenTypeAccess = "access"
)

var (
	hmacMethods     = []string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}
	errTokenInvalid = errors.New(errInvalidToken)
)

// AccessClaims is the payload of a portal access token.
type AccessClaims struct {
	Type              string   `json:"type"`
	Role              string   `json:"role"`
	Capabilities      []string `json:"capabilities,omitempty"`
	AssignedVendorIDs []string `json:"assigned_vendor_ids,omitempty"`
	jwt.RegisteredClaims
}

// AuthRequired validates the access token and stores the caller's id, role,
// capabilities and sub-admin vendor assignments on the gin and request
// contexts.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, errMissingToken)
			return
		}
		claims, userID, vendorIDs, err := parseAccessToken(raw, cfg.GetJWTAccessSecret())
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		capabilities := claims.Capabilities
		if capabilities == nil {
			capabilities = []string{}
		}
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextCapabilitiesKey, capabilities)
		c.Set(ContextVendorIDsKey, vendorIDs)

		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID.String())
		ctx = context.WithValue(ctx, logger.RoleKey, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole lets only the listed roles through.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := c.Get(ContextRoleKey)
		for _, allowed := range roles {
			if current == allowed {
				c.Next()
				return
			}
		}
		Error(c, http.StatusForbidden, "forbidden", nil)
		c.Abort()
	}
}

func parseAccessToken(raw, secret string) (*AccessClaims, uuid.UUID, []uuid.UUID, error) {
	claims := &AccessClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, hmacKey(secret), jwt.WithValidMethods(hmacMethods)); err != nil {
		return nil, uuid.Nil, nil, errTokenInvalid
	}
	if claims.Type != tokenTypeAccess || strings.TrimSpace(claims.Role) == "" {
		return nil, uuid.Nil, nil, errTokenInvalid
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, nil, errTokenInvalid
	}
	vendorIDs := make([]uuid.UUID, 0, len(claims.AssignedVendorIDs))
	for _, rawID := range claims.AssignedVendorIDs {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, uuid.Nil, nil, errTokenInvalid
		}
		vendorIDs = append(vendorIDs, id)
	}
	return claims, userID, vendorIDs, nil
}

// ParseHMACClaims verifies an HMAC-signed token of any shape and returns its
// claims. Vendor tokens use it.
func ParseHMACClaims(raw, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, hmacKey(secret), jwt.WithValidMethods(hmacMethods)); err != nil {
		return nil, errTokenInvalid
	}
	return claims, nil
}

func hmacKey(secret string) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return []byte(secret), nil }
}

// ExtractBearerToken returns the token of an "Authorization: Bearer" header.
func ExtractBearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
	c.Abort()
}
