package geoip

import (
	"net/http/httptest"
	"testing"
)

func TestNew_EmptyPathDisablesLookups(t *testing.T) {
	r, err := New("")
	if err != nil {
		t.Fatalf("expected no error for empty path, got %v", err)
	}
	if r.Enabled() {
		t.Error("expected resolver without database to be disabled")
	}
	if loc := r.Locate("8.8.8.8"); loc != (Location{}) {
		t.Errorf("expected empty location, got %+v", loc)
	}
}

func TestNew_MissingFileFallsBack(t *testing.T) {
	r, err := New("/nonexistent/path.mmdb")
	if err != nil {
		t.Fatalf("expected graceful fallback, got %v", err)
	}
	if loc := r.Locate("8.8.8.8"); loc != (Location{}) {
		t.Errorf("expected empty location, got %+v", loc)
	}
	if err := r.Close(); err != nil {
		t.Errorf("expected no error closing disabled resolver, got %v", err)
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	if loc := r.LocateRequest(httptest.NewRequest("GET", "/", nil)); loc != (Location{}) {
		t.Errorf("expected empty location, got %+v", loc)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{name: "remote addr", remote: "203.0.113.7:5123", want: "203.0.113.7"},
		{name: "forwarded header ignored", remote: "10.0.0.1:80", forwarded: "198.51.100.2, 10.0.0.1", want: "10.0.0.1"},
		{name: "no port", remote: "203.0.113.9", want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
