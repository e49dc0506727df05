// Package notification provides event handlers that notify operations staff
// about lead lifecycle milestones. Domain modules publish events and never
// talk to email providers directly.
package notification

import (
	"context"
	"errors"

	"leadportal_backend/internal/email"
	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/domain"
	leadsrepo "leadportal_backend/internal/leads/repository"
	"leadportal_backend/platform/logger"

	"github.com/google/uuid"
)

// UserDirectory resolves the user named in a notification.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// Config holds the notification settings.
type Config interface {
	GetOpsNotifyEmail() string
	GetAppBaseURL() string
}

// Module subscribes to lead events and sends the matching notifications.
type Module struct {
	sender  email.Sender
	users   UserDirectory
	opsTo   string
	baseURL string
	log     *logger.Logger
}

// New creates the notification module. A nil sender disables email delivery.
func New(sender email.Sender, users UserDirectory, cfg Config, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{
		sender:  sender,
		users:   users,
		opsTo:   cfg.GetOpsNotifyEmail(),
		baseURL: cfg.GetAppBaseURL(),
		log:     log,
	}
}

// RegisterHandlers subscribes to the lead events the module reacts to.
func (m *Module) RegisterHandlers(bus events.Subscriber) {
	bus.Subscribe(events.LeadLeftFunnel{}.EventName(), m)
	bus.Subscribe(events.LeadForwarded{}.EventName(), m)
	bus.Subscribe(events.LeadDeactivated{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadLeftFunnel:
		return m.handleLeadLeftFunnel(ctx, e)
	case events.LeadForwarded:
		m.log.WithContext(ctx).Info("lead forwarded to client", "lead_id", e.DisplayID, "client_id", e.ClientID, "actor_id", e.ActorID)
		return nil
	case events.LeadDeactivated:
		m.log.WithContext(ctx).Info("lead deactivated", "lead_id", e.DisplayID, "actor_id", e.ActorID)
		return nil
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadLeftFunnel(ctx context.Context, e events.LeadLeftFunnel) error {
	if m.opsTo == "" {
		return nil
	}

	notice := email.LeftFunnelNotice{
		LeadID:    e.DisplayID,
		ActorName: m.actorName(ctx, e.ActorID),
		LeftAt:    e.LeftAt,
	}
	if m.baseURL != "" {
		notice.LeadURL = m.baseURL + "/leads/" + e.DisplayID
	}

	if err := m.sender.SendLeadLeftFunnelEmail(ctx, m.opsTo, notice); err != nil {
		m.log.WithContext(ctx).Error("failed to send left funnel email", "lead_id", e.DisplayID, "error", err)
		return err
	}
	m.log.WithContext(ctx).Info("left funnel email sent", "lead_id", e.DisplayID)
	return nil
}

// actorName falls back to an empty name when the user cannot be resolved.
func (m *Module) actorName(ctx context.Context, id uuid.UUID) string {
	if m.users == nil {
		return ""
	}
	u, err := m.users.GetUser(ctx, id)
	if err != nil {
		if !errors.Is(err, leadsrepo.ErrNotFound) {
			m.log.WithContext(ctx).Warn("resolve notification actor", "user_id", id, "error", err)
		}
		return ""
	}
	return u.Name
}

var _ events.Handler = (*Module)(nil)
