package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agbru/picalc/internal/metrics"
)

// scrape returns the /metrics body served by s.
func scrape(t *testing.T, s *Server) string {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_CountsEveryIntegrateRequest(t *testing.T) {
	t.Parallel()
	s := newTestServer()

	for _, q := range []string{"steps=2000&strategy=post", "steps=2000&strategy=atomic", "steps=0"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/integrate?"+q, http.NoBody))
	}

	// The scrape itself is in flight, and counted, only after it is served.
	body := scrape(t, s)
	for _, want := range []string{
		"picalc_requests_total 3",
		"picalc_request_duration_seconds_count 3",
		"picalc_active_requests 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
	if got := s.metrics.Runs().RunCount("post", true) + s.metrics.Runs().RunCount("atomic", true); got != 2 {
		t.Errorf("recorded runs = %v, want 2 (the rejected request runs nothing)", got)
	}
}

func TestMetrics_ActiveRequestsSettle(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	s := &Server{metrics: m}

	var during string
	h := s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		rec := httptest.NewRecorder()
		m.WritePrometheus(rec, r)
		during = rec.Body.String()
	})
	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/integrate", http.NoBody))

	if !strings.Contains(during, "picalc_active_requests 1") {
		t.Error("request should be counted as active while served")
	}
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if !strings.Contains(rec.Body.String(), "picalc_active_requests 0") {
		t.Error("active requests should return to 0")
	}
}

func TestMetrics_SharedRegistry(t *testing.T) {
	t.Parallel()
	runs := metrics.NewIntegration()
	s := newTestServer(WithMetrics(NewMetricsWith(runs)))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/integrate?steps=1000&strategy=reduce&workers=2", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if runs.RunCount("reduce", true) != 1 {
		t.Error("runs served over HTTP should land in the shared recorder")
	}
	body := scrape(t, s)
	for _, want := range []string{"picalc_runs_total", "picalc_run_duration_seconds", "picalc_workers", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestServer_handleMetrics_Methods(t *testing.T) {
	t.Parallel()
	s := newTestServer()

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
		{http.MethodPut, http.StatusMethodNotAllowed},
		{http.MethodDelete, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(tt.method, "/metrics", http.NoBody))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
