package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequestsByRoute(t *testing.T) {
	metrics := NewMetrics()

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/products/p1", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("/products/{id}", "200"))
	assert.Equal(t, float64(3), count)
}

func TestObserveCheckoutOutcomes(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCheckout("success")
	metrics.ObserveCheckout("success")
	metrics.ObserveCheckout("partial")
	metrics.ObserveStockFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.checkoutsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.checkoutsTotal.WithLabelValues("partial")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.stockFailures))
}

func TestMetricsEndpointExposition(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCheckout("success")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tillpoint_checkouts_total"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveCheckout("success")
	metrics.ObserveStockFailure()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
