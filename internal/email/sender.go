// Package email renders and delivers operational emails.
package email

import (
	"context"
	"time"
)

// Sender delivers the lead portal's notification emails.
type Sender interface {
	SendLeadLeftFunnelEmail(ctx context.Context, toEmail string, notice LeftFunnelNotice) error
}

// LeftFunnelNotice describes a lead that was submitted to an attorney.
type LeftFunnelNotice struct {
	LeadID    string
	ActorName string
	LeftAt    time.Time
	LeadURL   string
}

// NoopSender drops every email. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendLeadLeftFunnelEmail(context.Context, string, LeftFunnelNotice) error {
	return nil
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
