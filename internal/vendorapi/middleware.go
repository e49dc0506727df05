package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contextVendorIDKey   = "vendorUserID"
	contextCampaignIDKey = "vendorCampaignID"
	contextAuditErrorKey = "vendorAuditError"

	maxRequestBody = 1 << 20
)

// TokenAuthMiddleware verifies the vendor bearer token and stores its
// userId and campId claims on the gin context.
func TokenAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := httpkit.ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortAudited(c, http.StatusUnauthorized, "Authorization token missing")
			return
		}

		claims, err := httpkit.ParseHMACClaims(raw, secret)
		if err != nil {
			abortAudited(c, http.StatusUnauthorized, "Invalid authorization token")
			return
		}
		userRaw, _ := claims["userId"].(string)
		userID, err := uuid.Parse(userRaw)
		if err != nil {
			abortAudited(c, http.StatusUnauthorized, "Invalid authorization token")
			return
		}

		campaign, _ := claims["campId"].(string)
		c.Set(contextVendorIDKey, userID)
		c.Set(contextCampaignIDKey, campaign)
		c.Next()
	}
}

func abortAudited(c *gin.Context, status int, message string) {
	c.Set(contextAuditErrorKey, message)
	httpkit.Error(c, status, message, nil)
	c.Abort()
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// AuditMiddleware records every vendor call, including rejected ones.
// A failed audit write is logged and never changes the response.
func AuditMiddleware(store LogStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpkit.Error(c, http.StatusRequestEntityTooLarge, "request body too large", nil)
				c.Abort()
				return
			}
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		started := time.Now()

		c.Next()

		entry := RequestLog{
			ID:          uuid.New(),
			RequestBody: asJSON(body),
			StatusCode:  w.Status(),
			Response:    asJSON(w.body.Bytes()),
			Host:        c.Request.Host,
			UserAgent:   c.Request.UserAgent(),
			Origin:      c.GetHeader("Origin"),
			CreatedAt:   started,
		}
		if v, ok := c.Get(contextVendorIDKey); ok {
			id := v.(uuid.UUID)
			entry.UserID = &id
		}
		if id, err := uuid.Parse(c.GetString(contextCampaignIDKey)); err == nil {
			entry.CampaignID = &id
		}
		if msg := c.GetString(contextAuditErrorKey); msg != "" {
			entry.Error = &msg
		}

		ctx := context.WithoutCancel(c.Request.Context())
		if err := store.InsertRequestLog(ctx, entry); err != nil {
			log.WithContext(ctx).Error("record vendor api log", "error", err)
		}
	}
}

// asJSON keeps valid JSON as is and wraps anything else as a JSON string.
func asJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage(`null`)
	}
	if json.Valid(b) {
		return json.RawMessage(bytes.Clone(b))
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
