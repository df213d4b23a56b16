package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		label      string
	}{
		{
			name:       "uses chi pattern for ids",
			method:     http.MethodGet,
			path:       "/api/v1/amendments/01ABC123",
			statusCode: http.StatusTeapot,
			label:      "/api/v1/amendments/{id}",
		},
		{
			name:       "nested pattern",
			method:     http.MethodPost,
			path:       "/api/v1/amendments/01ABC123/continue",
			statusCode: http.StatusOK,
			label:      "/api/v1/amendments/{id}/continue",
		},
		{
			name:       "unrouted path",
			method:     http.MethodGet,
			path:       "/nope",
			statusCode: http.StatusNotFound,
			label:      "unmatched",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewHTTPMetrics(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(m.Wrap)
			handler := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(tc.statusCode) }
			r.Get("/api/v1/amendments/{id}", handler)
			r.Post("/api/v1/amendments/{id}/continue", handler)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if rr.Code != tc.statusCode {
				t.Fatalf("expected status %d, got %d", tc.statusCode, rr.Code)
			}

			if got := testutil.ToFloat64(m.requestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			counter := m.requestsTotal.WithLabelValues(tc.method, tc.label, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter for %s to be 1, got %v", tc.label, got)
			}
		})
	}
}
