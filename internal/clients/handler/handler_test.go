package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadportal_backend/internal/clients/domain"
	"leadportal_backend/internal/clients/forwarder"
	"leadportal_backend/internal/clients/repository"
	"leadportal_backend/internal/clients/service"
	"leadportal_backend/internal/clients/transport"
	leadsdomain "leadportal_backend/internal/leads/domain"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/httpkit"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeads struct {
	answers  map[uuid.UUID]string
	recorded int
}

func (s *stubLeads) LeadAnswers(_ context.Context, _ leadsdomain.Actor, displayID string) (map[uuid.UUID]string, error) {
	if displayID != "lead-1" {
		return nil, apperr.NotFound("lead not found")
	}
	return s.answers, nil
}

func (s *stubLeads) RecordRecipient(context.Context, leadsdomain.Actor, string, uuid.UUID) error {
	s.recorded++
	return nil
}

type fixture struct {
	store    *repository.MemoryStore
	leads    *stubLeads
	endpoint *httptest.Server
	status   int
	router   *gin.Engine
	clientID uuid.UUID
	question uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		store:    repository.NewMemoryStore(),
		status:   http.StatusOK,
		clientID: uuid.New(),
		question: uuid.New(),
	}
	f.endpoint = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	t.Cleanup(f.endpoint.Close)

	f.leads = &stubLeads{answers: map[uuid.UUID]string{f.question: "2024-03-05"}}
	f.store.PutClient(domain.Client{
		ID:       f.clientID,
		Name:     "Firm",
		IsActive: true,
		Config: domain.Config{
			Path:        f.endpoint.URL,
			Method:      "POST",
			RequestBody: []domain.FieldMapping{{Key: "incident_date", QuestionID: &f.question, DateFormat: "MM/DD/YYYY"}},
		},
	})

	log := logger.Nop()
	svc := service.New(f.store, f.leads, forwarder.New(0, log), nil, validator.New(), nil, log)

	admin := uuid.New()
	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, admin)
		c.Set(httpkit.ContextRoleKey, string(leadsdomain.RoleAdmin))
		c.Next()
	})
	New(svc).RegisterRoutes(f.router.Group("/clients"))
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListClients(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.ClientListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Firm", resp.Items[0].Name)
}

func TestSaveConfigRejectsBadMappings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/clients/"+f.clientID.String()+"/config", map[string]any{
		"path":        "https://firm.example/intake",
		"method":      "post",
		"requestBody": []map[string]any{{"key": "orphan"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "mapping needs a question_id or a default")

	rec = f.do(t, http.MethodPut, "/clients/"+f.clientID.String()+"/config", map[string]any{
		"path":        "https://firm.example/intake",
		"method":      "post",
		"requestBody": []map[string]any{{"key": "source", "default": map[string]any{"channel": "tv"}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"method":"POST"`)
	assert.Contains(t, rec.Body.String(), `"channel":"tv"`)
}

func TestPreviewFormatsDates(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/clients/"+f.clientID.String()+"/leads/lead-1/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"response":"03/05/2024"`)
}

func TestSendSyncAndDeferred(t *testing.T) {
	f := newFixture(t)
	path := "/clients/" + f.clientID.String() + "/leads/lead-1/send"

	rec := f.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"statusCode":200,"response":{"received":true}}`, rec.Body.String())
	assert.Equal(t, 1, f.leads.recorded)

	rec = f.do(t, http.MethodPost, path, map[string]any{"deferred": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no queue is configured")
}

func TestSendUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.status = http.StatusInternalServerError

	rec := f.do(t, http.MethodPost, "/clients/"+f.clientID.String()+"/leads/lead-1/send", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body httpkit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upstream_error", body.Code)
	assert.Zero(t, f.leads.recorded)

	logs, err := f.store.ListAPILogsByLead(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, http.StatusInternalServerError, logs[0].StatusCode)
}

func TestBadClientID(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/clients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
