package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultIndexURL is the public CDN copy of the catalog index.
const DefaultIndexURL = "https://skymotion-cdn.b-cdn.net/videos_index.json"

// DefaultIndexKey is the object key of the index in the catalog bucket.
const DefaultIndexKey = "videos_index.json"

const maxIndexBytes = 32 << 20

var ErrNoSource = errors.New("catalog: no source configured")

// Source loads the full catalog.
type Source interface {
	Load(ctx context.Context) ([]Video, error)
}

// HTTPSource fetches the index over HTTP, bypassing intermediate caches.
type HTTPSource struct {
	URL  string
	http *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSource) Load(ctx context.Context) ([]Video, error) {
	if s == nil || s.URL == "" {
		return nil, ErrNoSource
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data)
}

// ObjectReader reads a whole object from a bucket.
type ObjectReader interface {
	ReadObject(ctx context.Context, key string) ([]byte, error)
}

// ObjectSource reads the index from object storage.
type ObjectSource struct {
	Reader ObjectReader
	Key    string
}

func (s *ObjectSource) Load(ctx context.Context) ([]Video, error) {
	if s == nil || s.Reader == nil {
		return nil, ErrNoSource
	}
	key := s.Key
	if key == "" {
		key = DefaultIndexKey
	}
	data, err := s.Reader.ReadObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read catalog object: %w", err)
	}
	return Decode(data)
}

// Decode parses an index document. Anything other than a JSON array is an
// empty catalog, not an error.
func Decode(data []byte) ([]Video, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []Video{}, nil
	}
	var videos []Video
	if err := json.Unmarshal(trimmed, &videos); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if videos == nil {
		videos = []Video{}
	}
	return videos, nil
}
