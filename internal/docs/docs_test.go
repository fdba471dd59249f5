package docs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHandleOpenAPI(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/docs/openapi.yaml", nil)
	rec := httptest.NewRecorder()

	HandleOpenAPI(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/yaml")
	}
	if !strings.HasPrefix(rec.Body.String(), "openapi:") {
		t.Error("body should start with 'openapi:'")
	}
}

func TestHandleDocs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/docs", nil)
	rec := httptest.NewRecorder()

	HandleDocs(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	ct := rec.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "api-reference") {
		t.Error("body should contain 'api-reference'")
	}
	if !strings.Contains(body, "scalar") {
		t.Error("body should contain 'scalar'")
	}
	if !strings.Contains(body, `data-url="/api/docs/openapi.yaml"`) {
		t.Error("page should point at the openapi document")
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "cdn.jsdelivr.net") {
		t.Errorf("CSP should allow cdn.jsdelivr.net, got %q", csp)
	}
}

func TestMount(t *testing.T) {
	r := chi.NewRouter()
	Mount(r)

	for _, path := range []string{PagePath, OpenAPIPath} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestOpenAPIContainsAllEndpoints(t *testing.T) {
	doc := string(openapiYAML)

	endpoints := []string{
		"/api/health",
		"/v1/catalog",
		"/v1/sessions",
		"/v1/sessions/{id}",
		"/v1/sessions/{id}/done",
		"/v1/saved-moves",
		"/v1/saved-moves/{id}",
	}

	for _, ep := range endpoints {
		if !strings.Contains(doc, ep+":") {
			t.Errorf("openapi document missing endpoint: %s", ep)
		}
	}
}
