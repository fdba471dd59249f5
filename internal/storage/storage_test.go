package storage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SLASHOO/SkyMotion-Library/internal/storage"
)

func newTestStorage(t *testing.T, endpoint string, maxBytes int64) *storage.Storage {
	t.Helper()
	s, err := storage.New(context.Background(), storage.Config{
		Endpoint:       endpoint,
		Bucket:         "catalog",
		AccessKey:      "test",
		SecretKey:      "test",
		MaxObjectBytes: maxBytes,
	})
	if err != nil {
		t.Fatalf("expected no error creating storage client, got: %v", err)
	}
	return s
}

func TestNewStorageRequiresNoNetwork(t *testing.T) {
	newTestStorage(t, "http://localhost:9000", 0)
}

func TestReadObject(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"v1"}]`))
	}))
	defer srv.Close()

	s := newTestStorage(t, srv.URL, 0)
	data, err := s.ReadObject(context.Background(), "videos_index.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `[{"id":"v1"}]` {
		t.Errorf("unexpected body %s", data)
	}
	if gotPath != "/catalog/videos_index.json" {
		t.Errorf("expected path-style request, got %q", gotPath)
	}
}

func TestReadObjectTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	s := newTestStorage(t, srv.URL, 16)
	if _, err := s.ReadObject(context.Background(), "big.json"); err == nil {
		t.Fatal("expected size limit error")
	}
}

func TestReadObjectMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<Error><Code>NoSuchKey</Code></Error>`))
	}))
	defer srv.Close()

	s := newTestStorage(t, srv.URL, 0)
	if _, err := s.ReadObject(context.Background(), "missing.json"); err == nil {
		t.Fatal("expected error for missing object")
	}
}
