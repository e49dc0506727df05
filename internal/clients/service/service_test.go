package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"leadportal_backend/internal/clients/domain"
	"leadportal_backend/internal/clients/forwarder"
	"leadportal_backend/internal/clients/repository"
	leadsdomain "leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/metrics"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeads struct {
	answers   map[string]map[uuid.UUID]string
	recorded  []uuid.UUID
	recordErr error
}

func (s *stubLeads) LeadAnswers(_ context.Context, _ leadsdomain.Actor, displayID string) (map[uuid.UUID]string, error) {
	a, ok := s.answers[displayID]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	return a, nil
}

func (s *stubLeads) RecordRecipient(_ context.Context, _ leadsdomain.Actor, _ string, clientID uuid.UUID) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, clientID)
	return nil
}

type fakeSender struct {
	result  forwarder.Result
	err     error
	payload domain.Payload
	calls   int
}

func (f *fakeSender) Send(_ context.Context, _ domain.Config, payload domain.Payload) (forwarder.Result, error) {
	f.calls++
	f.payload = payload
	return f.result, f.err
}

type fakeQueue struct {
	reqs []ForwardRequest
}

func (q *fakeQueue) EnqueueForward(_ context.Context, req ForwardRequest) error {
	q.reqs = append(q.reqs, req)
	return nil
}

type fixture struct {
	store    *repository.MemoryStore
	leads    *stubLeads
	sender   *fakeSender
	queue    *fakeQueue
	metrics  *metrics.Metrics
	svc      *Service
	clientID uuid.UUID
	question uuid.UUID
	admin    leadsdomain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    repository.NewMemoryStore(),
		sender:   &fakeSender{result: forwarder.Result{StatusCode: http.StatusOK, Body: json.RawMessage(`{"ok":true}`)}},
		queue:    &fakeQueue{},
		metrics:  metrics.New(prometheus.NewRegistry()),
		clientID: uuid.New(),
		question: uuid.New(),
		admin:    leadsdomain.Actor{ID: uuid.New(), Role: leadsdomain.RoleAdmin},
	}
	f.leads = &stubLeads{answers: map[string]map[uuid.UUID]string{
		"lead-1": {f.question: "ada@example.com"},
	}}
	f.store.PutClient(domain.Client{
		ID:       f.clientID,
		Name:     "Firm",
		IsActive: true,
		Config: domain.Config{
			Path:        "https://intake.example/leads",
			Method:      "POST",
			RequestBody: []domain.FieldMapping{{Key: "email", QuestionID: &f.question}},
		},
	})
	f.svc = New(f.store, f.leads, f.sender, f.queue, validator.New(), f.metrics, logger.Nop())
	return f
}

func TestSaveConfigValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  domain.Config
	}{
		{"missing path", domain.Config{Method: "POST"}},
		{"relative path", domain.Config{Path: "/leads", Method: "POST"}},
		{"bad method", domain.Config{Path: "https://x.example", Method: "DELETE"}},
		{"mapping without source", domain.Config{Path: "https://x.example", Method: "POST", RequestBody: []domain.FieldMapping{{Key: "a"}}}},
		{"mapping without key", domain.Config{Path: "https://x.example", Method: "POST", RequestBody: []domain.FieldMapping{{QuestionID: &f.question}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SaveConfig(ctx, f.clientID, tc.cfg)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestSaveConfigStoresNormalisedConfig(t *testing.T) {
	f := newFixture(t)
	web := domain.String("web")

	resp, err := f.svc.SaveConfig(context.Background(), f.clientID, domain.Config{
		Path:        " https://new.example/intake ",
		Method:      "patch",
		RequestBody: []domain.FieldMapping{{Key: "source", Default: &web}},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://new.example/intake", resp.Configuration.Path)
	assert.Equal(t, "PATCH", resp.Configuration.Method)

	_, err = f.svc.SaveConfig(context.Background(), uuid.New(), resp.Configuration)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPreviewResolvesAnswers(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Preview(context.Background(), f.admin, f.clientID, "lead-1")
	require.NoError(t, err)
	require.Len(t, resp.Configuration.RequestBody, 1)
	assert.True(t, resp.Configuration.RequestBody[0].Response.Equal(domain.String("ada@example.com")))
	assert.Zero(t, f.sender.calls)

	_, err = f.svc.Preview(context.Background(), f.admin, uuid.New(), "lead-1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSendLogsAndRecordsRecipient(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Send(context.Background(), f.admin, f.clientID, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUCCESS", f.sender.payload.StatusFlag)
	assert.Equal(t, []uuid.UUID{f.clientID}, f.leads.recorded)

	logs, err := f.svc.ListAPILogs(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, http.StatusOK, logs[0].StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(logs[0].Response))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ForwardOutcomes.WithLabelValues("success")))
}

func TestSendFailureIsLoggedNotRecorded(t *testing.T) {
	f := newFixture(t)
	f.sender.result = forwarder.Result{StatusCode: http.StatusUnprocessableEntity, Body: json.RawMessage(`"bad phone"`)}
	f.sender.err = forwarder.ErrRejected

	_, err := f.svc.Send(context.Background(), f.admin, f.clientID, "lead-1")
	var fwdErr *ForwardError
	require.True(t, errors.As(err, &fwdErr))
	assert.Equal(t, http.StatusUnprocessableEntity, fwdErr.StatusCode)
	assert.ErrorIs(t, err, forwarder.ErrRejected)
	assert.Empty(t, f.leads.recorded)

	logs, err := f.svc.ListAPILogs(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, http.StatusUnprocessableEntity, logs[0].StatusCode)
}

func TestSendRequiresReadyClient(t *testing.T) {
	f := newFixture(t)
	incomplete := uuid.New()
	f.store.PutClient(domain.Client{ID: incomplete, IsActive: true, Config: domain.Config{Path: "https://x.example"}})

	_, err := f.svc.Send(context.Background(), f.admin, incomplete, "lead-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Send(context.Background(), f.admin, f.clientID, "lead-404")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, f.sender.calls)
}

func TestEnqueue(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Enqueue(context.Background(), f.admin, f.clientID, "lead-1"))
	require.Len(t, f.queue.reqs, 1)
	assert.Equal(t, "lead-1", f.queue.reqs[0].LeadDisplayID)
	assert.Equal(t, f.admin.ID, f.queue.reqs[0].Actor.ID)
	assert.Zero(t, f.sender.calls)

	require.NoError(t, f.svc.Forward(context.Background(), f.queue.reqs[0]))
	assert.Equal(t, 1, f.sender.calls)

	noQueue := New(f.store, f.leads, f.sender, nil, validator.New(), nil, logger.Nop())
	err := noQueue.Enqueue(context.Background(), f.admin, f.clientID, "lead-1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
