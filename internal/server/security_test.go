package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	c := DefaultSecurityConfig()

	if !c.EnableCORS || len(c.AllowedOrigins) != 1 || c.AllowedOrigins[0] != "*" {
		t.Errorf("CORS defaults = %v %v, want enabled for *", c.EnableCORS, c.AllowedOrigins)
	}
	if len(c.AllowedMethods) != 2 || c.AllowedMethods[0] != http.MethodGet || c.AllowedMethods[1] != http.MethodOptions {
		t.Errorf("AllowedMethods = %v, want [GET OPTIONS]", c.AllowedMethods)
	}
	if c.MaxSteps != 1_000_000_000 {
		t.Errorf("MaxSteps = %d, want 1e9", c.MaxSteps)
	}
	if c.MaxWorkers < 1 {
		t.Errorf("MaxWorkers = %d, want a positive bound", c.MaxWorkers)
	}
}

// Hardening headers are set on every route, including rejected requests.
func TestSecurityHeaders_AllRoutes(t *testing.T) {
	t.Parallel()
	s := newTestServer()

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"integrate", http.MethodGet, "/integrate?steps=1000&strategy=serial", http.StatusOK},
		{"bad steps", http.MethodGet, "/integrate?steps=-3", http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "/integrate", http.StatusMethodNotAllowed},
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, http.NoBody))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			for h, v := range want {
				if got := rec.Header().Get(h); got != v {
					t.Errorf("%s = %q, want %q", h, got, v)
				}
			}
		})
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   SecurityConfig
		origin   string
		want     string
		wantVary bool
	}{
		{"disabled", SecurityConfig{AllowedOrigins: []string{"*"}}, "http://example.com", "", false},
		{"wildcard", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}}, "http://example.com", "*", false},
		{"wildcard without origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}}, "", "*", false},
		{"listed origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test", "http://b.test"}}, "http://b.test", "http://b.test", true},
		{"unlisted origin", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test"}}, "http://c.test", "", false},
		{"no origin with list", SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test"}}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.config.AllowedMethods = []string{http.MethodGet, http.MethodOptions}
			h := SecurityMiddleware(tt.config, func(http.ResponseWriter, *http.Request) {})

			req := httptest.NewRequest(http.MethodGet, "/integrate", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
			if tt.want != "" && rec.Header().Get("Access-Control-Allow-Methods") != "GET, OPTIONS" {
				t.Errorf("Allow-Methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Errorf("Vary: Origin set = %v, want %v", got, tt.wantVary)
			}
		})
	}
}

// A preflight never starts an integration.
func TestSecurityMiddleware_PreflightSkipsIntegration(t *testing.T) {
	t.Parallel()
	s := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/integrate?steps=1000&strategy=all", http.NoBody)
	req.Header.Set("Origin", "http://dashboard.test")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("preflight should carry CORS headers")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body = %q, want empty", rec.Body.String())
	}
	for _, st := range []string{"serial", "post", "atomic", "reduce"} {
		if n := s.metrics.Runs().RunCount(st, true); n != 0 {
			t.Errorf("%s ran %v times on a preflight", st, n)
		}
	}
}
