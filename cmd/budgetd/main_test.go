package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvOverridesDottedKeys(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("JWT_PRIVATE_KEY", "")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("BUDGETD_SERVER_HOST", "0.0.0.0")
	t.Setenv("BUDGETD_SERVER_PORT", "9191")
	t.Setenv("BUDGETD_BUDGET_CURRENCY", "EUR")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("BUDGETD_SENTRY_DSN", "")
	bindEnv()

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "EUR", cfg.Budget.DefaultCurrency)
	assert.Empty(t, cfg.Sentry.DSN)
}
