package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreakerClient(t *testing.T, cfg CircuitBreakerConfig) *CircuitBreakerClient {
	t.Helper()
	inner := New(Config{Timeout: 2 * time.Second, MaxRetries: 0})
	return NewCircuitBreakerClient(inner, cfg, slog.Default())
}

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newBreakerClient(t, DefaultCircuitBreakerConfig("test"))

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultCircuitBreakerConfig("failing")
	cfg.MinRequests = 3
	client := newBreakerClient(t, cfg)

	for i := 0; i < 3; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.Error(t, err)
		require.Nil(t, resp)
	}

	assert.Equal(t, gobreaker.StateOpen, client.State())

	// Open breaker rejects without reaching the upstream.
	seen := requests.Load()
	_, err := client.Get(context.Background(), server.URL)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, seen, requests.Load())
}

func TestCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultCircuitBreakerConfig("recovering")
	cfg.MinRequests = 2
	cfg.Timeout = 50 * time.Millisecond
	client := newBreakerClient(t, cfg)

	for i := 0; i < 2; i++ {
		_, _ = client.Get(context.Background(), server.URL)
	}
	require.Equal(t, gobreaker.StateOpen, client.State())

	fail.Store(false)
	time.Sleep(80 * time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestCircuitBreaker_DoesNotTripOn4xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := DefaultCircuitBreakerConfig("clienterrors")
	cfg.MinRequests = 2
	client := newBreakerClient(t, cfg)

	for i := 0; i < 5; i++ {
		resp, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateClosed, client.State())
}
