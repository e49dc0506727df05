package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsInMemory())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetCORSOrigins())
	assert.Equal(t, 30*time.Second, cfg.GetReportCacheTTL())
	assert.Equal(t, "default", cfg.GetAsynqQueueName())
	assert.False(t, cfg.IsEmailEnabled())
	assert.True(t, cfg.GetLeadIntakeStrict())
}

func TestLoadLeadIntakeStrictOptOut(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("LEAD_INTAKE_STRICT", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.GetLeadIntakeStrict())
}

func TestLoadRequiresAccessSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	_, err := Load()
	assert.Error(t, err)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a ,, b,"))
	assert.Empty(t, splitCSV(""))
}
