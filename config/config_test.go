package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost:5432/solarhub_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_TTL", "")
	t.Setenv("OTP_TTL", "")
	t.Setenv("PAYMENT_CURRENCY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "usd", cfg.PaymentCurrency)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("PAYMENT_CURRENCY", "EUR")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "eur", cfg.PaymentCurrency)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvRequiresSecrets(t *testing.T) {
	tests := []struct {
		name        string
		databaseURL string
		jwtSecret   string
		expected    string
	}{
		{"missing database url", "", "secret", "DATABASE_URL is required"},
		{"missing jwt secret", "postgresql://localhost/db", "", "JWT_SECRET is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", tt.databaseURL)
			t.Setenv("JWT_SECRET", tt.jwtSecret)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	setRequiredEnv(t)

	t.Run("duration", func(t *testing.T) {
		t.Setenv("JWT_TTL", "forever")
		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("port", func(t *testing.T) {
		t.Setenv("SMTP_PORT", "smtp")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}
