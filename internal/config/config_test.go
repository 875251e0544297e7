package config

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("BUDGET_CURRENCY", "")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")
	t.Setenv("JWT_PRIVATE_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsTesting())
	assert.Equal(t, "INR", cfg.Budget.DefaultCurrency)
	assert.Equal(t, int64(5<<20), cfg.Budget.ImportMaxBytes)
	assert.Equal(t, 45, cfg.Budget.DemoSeedCount)
	assert.Empty(t, cfg.Sentry.DSN)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenDuration)
	assert.NotNil(t, cfg.JWT.PrivateKey)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("BUDGET_CURRENCY", "usd")
	t.Setenv("IMPORT_MAX_BYTES", "1024")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example.com/1")
	t.Setenv("SENTRY_TRACES_SAMPLE_RATE", "0.25")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "not-a-duration")
	t.Setenv("JWT_PRIVATE_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Budget.DefaultCurrency)
	assert.Equal(t, int64(1024), cfg.Budget.ImportMaxBytes)
	assert.Equal(t, 3, cfg.Security.RateLimitBurst)
	assert.Equal(t, "https://key@sentry.example.com/1", cfg.Sentry.DSN)
	assert.InDelta(t, 0.25, cfg.Sentry.TracesSampleRate, 1e-9)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenDuration, "invalid durations fall back to the default")
}

func TestLoad_ProductionRequiresKeys(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_PRIVATE_KEY", "")
	t.Setenv("JWT_PUBLIC_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "must be set in production")
}

func TestLoad_KeysFromEnvironment(t *testing.T) {
	priv, _, err := GenerateRSAKeyPair()
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_PRIVATE_KEY", base64.StdEncoding.EncodeToString(privPEM))
	t.Setenv("JWT_PUBLIC_KEY", base64.StdEncoding.EncodeToString(pubPEM))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, priv.Equal(cfg.JWT.PrivateKey))
	assert.True(t, priv.PublicKey.Equal(cfg.JWT.PublicKey))
}
