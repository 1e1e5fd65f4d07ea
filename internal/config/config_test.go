package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8002", cfg.ProductServiceURL)
	assert.Equal(t, "http://localhost:8003", cfg.CartServiceURL)
	assert.Equal(t, 10*time.Second, cfg.ReconcileTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 48, cfg.SessionTTL)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidReconcileTimeout(t *testing.T) {
	t.Setenv("RECONCILE_TIMEOUT", "0s")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RECONCILE_TIMEOUT must be positive")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_CustomUpstreams(t *testing.T) {
	t.Setenv("PRODUCT_SERVICE_URL", "http://product.prod:8080")
	t.Setenv("CART_SERVICE_URL", "http://cart.prod:8080")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://product.prod:8080", cfg.ProductServiceURL)
	assert.Equal(t, "http://cart.prod:8080", cfg.CartServiceURL)
}

func TestLoad_CustomSessionTTL(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "12")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.SessionTTL)
}
