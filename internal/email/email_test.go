package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLeftFunnel(t *testing.T) {
	html, err := renderLeftFunnel(LeftFunnelNotice{
		LeadID:    "lead-12",
		ActorName: "Ada <ops>",
		LeftAt:    time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC),
		LeadURL:   "https://portal.example/leads/lead-12",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>lead-12</strong>")
	assert.Contains(t, html, "Ada &lt;ops&gt;")
	assert.Contains(t, html, "Tue, 05 Mar 2024 14:00:00 UTC")
	assert.Contains(t, html, `href="https://portal.example/leads/lead-12"`)
}

func TestRenderLeftFunnelWithoutLink(t *testing.T) {
	html, err := renderLeftFunnel(LeftFunnelNotice{LeadID: "lead-1", LeftAt: time.Now()})
	require.NoError(t, err)
	assert.NotContains(t, html, "Open lead")
}

func TestSMTPSenderRejectsBadRecipient(t *testing.T) {
	s := &SMTPSender{host: "localhost", port: 25, fromName: "Lead Portal", fromEmail: "ops@example.com"}
	err := s.SendLeadLeftFunnelEmail(context.Background(), "not an address", LeftFunnelNotice{LeadID: "lead-1"})
	assert.ErrorContains(t, err, "smtp to")
}
