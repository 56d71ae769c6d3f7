package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, int64(500), cfg.MinPayoutCents)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_PAYOUT_CENTS", "1000")
	t.Setenv("GATEWAY_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int64(1000), cfg.MinPayoutCents)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
}

func TestBadNumericEnvFallsBack(t *testing.T) {
	t.Setenv("MIN_PAYOUT_CENTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(500), cfg.MinPayoutCents)
}
