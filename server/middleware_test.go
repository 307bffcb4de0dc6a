package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithCORSConfig_Permissive(t *testing.T) {
	cfg := &corsConfig{permissive: true}
	handler := withCORSConfig(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), cfg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestWithCORSConfig_Preflight(t *testing.T) {
	cfg := &corsConfig{permissive: true}
	called := false
	handler := withCORSConfig(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), cfg)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/status", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if called {
		t.Error("preflight request reached the inner handler")
	}
}

func TestWithCORSConfig_RestrictedOrigin(t *testing.T) {
	cfg := &corsConfig{allowedOrigins: []string{"https://overlay.example.com", "*.example.org"}}
	handler := withCORSConfig(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), cfg)

	tests := []struct {
		origin string
		want   string
	}{
		{"https://overlay.example.com", "https://overlay.example.com"},
		{"https://sub.example.org", "https://sub.example.org"},
		{"https://evil.example.net", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Origin", tt.origin)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}
