package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		"metricstest", "GET", "/api/v1/products/{productID}/view", "200",
	))

	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metricstest"))
	r.Get("/api/v1/products/{productID}/view", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"p1", "p2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id+"/view", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		"metricstest", "GET", "/api/v1/products/{productID}/view", "200",
	))
	assert.Equal(t, before+2, after)
}

func TestPrometheusMetrics_RecordsStatusLabel(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		"metricstest", "POST", "/api/v1/selections/{productID}/checkout", "502",
	))

	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metricstest"))
	r.Post("/api/v1/selections/{productID}/checkout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/selections/p1/checkout", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		"metricstest", "POST", "/api/v1/selections/{productID}/checkout", "502",
	))
	assert.Equal(t, before+1, after)
}

func TestPrometheusMetrics_InFlightReturnsToZero(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("inflighttest"))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("inflighttest")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("inflighttest")))
}
