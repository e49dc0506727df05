package adapters

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	clientsdomain "leadportal_backend/internal/clients/domain"
	clientsservice "leadportal_backend/internal/clients/service"
	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/dedup"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/lifecycle"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientsLeadGateway(t *testing.T) {
	store := repository.NewMemoryStore()
	log := logger.Nop()
	lc := lifecycle.New(store, dedup.New(store, store, dedup.Options{PhoneRegion: "US"}), events.NewInMemoryBus(log), nil, log)
	gw := NewClientsLeadGateway(store, lc)

	vendor := domain.Actor{ID: uuid.New(), Role: domain.RoleVendor}
	other := domain.Actor{ID: uuid.New(), Role: domain.RoleVendor}
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	clientID := uuid.New()
	question := uuid.New()
	store.PutUser(domain.User{ID: clientID, Role: domain.RoleClient, IsActive: true})
	store.ImportLead(domain.Lead{
		ID:          uuid.New(),
		DisplayID:   "lead-1",
		SubmitterID: vendor.ID,
		Responses:   []domain.Response{{QuestionID: question, Answer: "Ada"}},
		Status:      domain.StatusNew,
		IsActive:    true,
		CreatedAt:   time.Now(),
	})
	ctx := context.Background()

	answers, err := gw.LeadAnswers(ctx, vendor, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", answers[question])

	_, err = gw.LeadAnswers(ctx, other, "lead-1")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = gw.LeadAnswers(ctx, admin, "lead-9")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, gw.RecordRecipient(ctx, admin, "lead-1", clientID))
	lead, err := store.GetByDisplayID(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{clientID}, lead.ClientIDs)

	history, err := store.ListHistory(ctx, "lead-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, &clientID, history[0].RecipientID)
}

type stubAPILogs []clientsdomain.APILog

func (s stubAPILogs) ListAPILogs(context.Context, string) ([]clientsdomain.APILog, error) {
	return s, nil
}

func TestLeadAPILogReader(t *testing.T) {
	clientID := uuid.New()
	reader := NewLeadAPILogReader(stubAPILogs{{
		ID:          uuid.New(),
		ClientID:    clientID,
		RequestBody: json.RawMessage(`[]`),
		Response:    json.RawMessage(`{"ok":true}`),
		StatusCode:  201,
	}})

	logs, err := reader.ListByLead(context.Background(), "lead-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, clientID, logs[0].ClientID)
	assert.Equal(t, 201, logs[0].ResponseStatusCode)
}

type captureScheduler struct {
	payloads []scheduler.LeadForwardPayload
}

func (c *captureScheduler) EnqueueLeadForward(_ context.Context, payload scheduler.LeadForwardPayload) error {
	c.payloads = append(c.payloads, payload)
	return nil
}

type captureForwarder struct {
	reqs []clientsservice.ForwardRequest
}

func (c *captureForwarder) Forward(_ context.Context, req clientsservice.ForwardRequest) error {
	c.reqs = append(c.reqs, req)
	return nil
}

func TestForwardQueueRoundTrip(t *testing.T) {
	sched := &captureScheduler{}
	queue := NewForwardQueue(sched)
	req := clientsservice.ForwardRequest{
		ClientID:      uuid.New(),
		LeadDisplayID: "lead-3",
		Actor: domain.Actor{
			ID:                uuid.New(),
			Role:              domain.RoleStaff,
			Capabilities:      []string{domain.CapabilityVerifier},
			AssignedVendorIDs: []uuid.UUID{uuid.New()},
		},
	}
	require.NoError(t, queue.EnqueueForward(context.Background(), req))
	require.Len(t, sched.payloads, 1)

	fwd := &captureForwarder{}
	require.NoError(t, NewForwardTaskRunner(fwd).ForwardLead(context.Background(), sched.payloads[0]))
	require.Len(t, fwd.reqs, 1)
	assert.Equal(t, req, fwd.reqs[0])

	assert.Nil(t, NewForwardQueue(nil))
}
