package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveWithMiddleware(h *Handler, req *http.Request) (*httptest.ResponseRecorder, string) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = MemberIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(rec, req)
	return rec, seen
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return body.Error
}

func TestMiddleware_MissingMemberHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/saved-moves", nil)

	rec, _ := serveWithMiddleware(NewHandler(""), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != LoginRequired {
		t.Errorf("expected %q, got %q", LoginRequired, msg)
	}
}

func TestMiddleware_TrustsHeaderWithoutSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/saved-moves", nil)
	req.Header.Set(MemberHeader, "mem_1")

	rec, seen := serveWithMiddleware(NewHandler(""), req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen != "mem_1" {
		t.Errorf("expected member id in context, got %q", seen)
	}
}

func TestMiddleware_RequiresTokenWhenSecretSet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/saved-moves", nil)
	req.Header.Set(MemberHeader, "mem_1")

	rec, _ := serveWithMiddleware(NewHandler("test-secret"), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_AcceptsMatchingToken(t *testing.T) {
	token, err := GenerateMemberToken("test-secret", "mem_1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/saved-moves", nil)
	req.Header.Set(MemberHeader, "mem_1")
	req.Header.Set("Authorization", "Bearer "+token)

	rec, seen := serveWithMiddleware(NewHandler("test-secret"), req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if seen != "mem_1" {
		t.Errorf("expected member id mem_1, got %q", seen)
	}
}

func TestMiddleware_RejectsTokenForOtherMember(t *testing.T) {
	token, _ := GenerateMemberToken("test-secret", "mem_2")
	req := httptest.NewRequest(http.MethodGet, "/v1/saved-moves", nil)
	req.Header.Set(MemberHeader, "mem_1")
	req.Header.Set("Authorization", "Bearer "+token)

	rec, _ := serveWithMiddleware(NewHandler("test-secret"), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "member mismatch" {
		t.Errorf("expected member mismatch, got %q", msg)
	}
}
