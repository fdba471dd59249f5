package saved

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
)

const (
	basePath  = "/v1/saved-moves"
	hydrateQS = "?limit=200&offset=0"
)

// Caller is the part of the API client the store needs.
type Caller interface {
	Call(ctx context.Context, method, path string, body any) (apiclient.Payload, error)
}

// Item is one saved move as reported by the server.
type Item struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Thumb    string   `json:"thumb"`
	VideoURL string   `json:"videoUrl"`
	Duration string   `json:"duration"`
	Env      []string `json:"env,omitempty"`
	Risk     []string `json:"risk,omitempty"`
	Subject  []string `json:"subject,omitempty"`
	Pilot    []string `json:"pilot,omitempty"`
	Mood     []string `json:"mood,omitempty"`
}

// createRequest is the body of POST /v1/saved-moves.
type createRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Thumb    string   `json:"thumb"`
	VideoURL string   `json:"video_url"`
	Duration string   `json:"duration"`
	Env      []string `json:"env"`
	Risk     []string `json:"risk"`
	Subject  []string `json:"subject"`
	Pilot    []string `json:"pilot"`
	Mood     []string `json:"mood"`
}

// Store mirrors the member's saved moves. The local list is only ever
// replaced by a hydrate, never edited in place.
type Store struct {
	api Caller

	mu    sync.RWMutex
	items []Item
}

func NewStore(api Caller) *Store {
	return &Store{api: api}
}

// Hydrate reloads the saved list. Any failure leaves the store empty.
func (s *Store) Hydrate(ctx context.Context) {
	items, err := s.fetch(ctx)
	if err != nil {
		slog.Warn("saved: list failed",
			"status", apiclient.StatusOf(err),
			"payload", errorPayload(err),
			"error", err,
		)
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Store) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Toggle saves or unsaves v and rehydrates either way. It returns the saved
// state observed after the rehydrate.
func (s *Store) Toggle(ctx context.Context, v catalog.Video) bool {
	key := catalog.KeyOf(v).Value

	if s.IsSaved(key) {
		if _, err := s.api.Call(ctx, http.MethodDelete, basePath+"/"+url.PathEscape(key), nil); err != nil {
			slog.Warn("saved: unsave failed",
				"id", key,
				"status", apiclient.StatusOf(err),
				"payload", errorPayload(err),
				"error", err,
			)
		}
	} else {
		if _, err := s.api.Call(ctx, http.MethodPost, basePath, newCreateRequest(key, v)); err != nil {
			slog.Warn("saved: save failed",
				"id", key,
				"status", apiclient.StatusOf(err),
				"payload", errorPayload(err),
				"error", err,
			)
		}
	}

	s.Hydrate(ctx)
	return s.IsSaved(key)
}

// Items returns a copy of the saved list.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func newCreateRequest(id string, v catalog.Video) createRequest {
	return createRequest{
		ID:       id,
		Title:    v.Title,
		Thumb:    v.Thumb,
		VideoURL: v.MediaURL(),
		Duration: string(v.Duration),
		Env:      nonNil(v.Env),
		Risk:     nonNil(v.Risk),
		Subject:  nonNil(v.Subject),
		Pilot:    nonNil(v.Pilot),
		Mood:     nonNil(v.Mood),
	}
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (s *Store) fetch(ctx context.Context) ([]Item, error) {
	payload, err := s.api.Call(ctx, http.MethodGet, basePath+hydrateQS, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(payload.JSON), nil
}

// decodeList accepts a bare array or one under items, saved_moves or moves.
// Entries that do not decode or have no usable id are dropped.
func decodeList(raw json.RawMessage) []Item {
	raw = bytes.TrimSpace(raw)
	var list []json.RawMessage
	if len(raw) > 0 && raw[0] == '[' {
		_ = json.Unmarshal(raw, &list)
	} else {
		var envelope struct {
			Items      []json.RawMessage `json:"items"`
			SavedMoves []json.RawMessage `json:"saved_moves"`
			Moves      []json.RawMessage `json:"moves"`
		}
		if err := json.Unmarshal(raw, &envelope); err == nil {
			switch {
			case envelope.Items != nil:
				list = envelope.Items
			case envelope.SavedMoves != nil:
				list = envelope.SavedMoves
			case envelope.Moves != nil:
				list = envelope.Moves
			}
		}
	}

	items := make([]Item, 0, len(list))
	for _, entry := range list {
		var r rawItem
		if err := json.Unmarshal(entry, &r); err != nil {
			continue
		}
		it := r.item()
		if it.ID == "" {
			continue
		}
		items = append(items, it)
	}
	return items
}

type rawItem struct {
	ID             flexString `json:"id"`
	VideoID        flexString `json:"video_id"`
	Slug           string     `json:"slug"`
	VideoURL       string     `json:"videoUrl"`
	LegacyVideoURL string     `json:"video_url"`
	Title          string     `json:"title"`
	Thumb          string     `json:"thumb"`
	Duration       flexString `json:"duration"`
	Env            []string   `json:"env"`
	Risk           []string   `json:"risk"`
	Subject        []string   `json:"subject"`
	Pilot          []string   `json:"pilot"`
	Mood           []string   `json:"mood"`
}

func (r rawItem) item() Item {
	media := firstNonEmpty(r.VideoURL, r.LegacyVideoURL)
	return Item{
		ID:       firstNonEmpty(string(r.ID), string(r.VideoID), r.Slug, r.VideoURL, r.LegacyVideoURL),
		Title:    r.Title,
		Thumb:    r.Thumb,
		VideoURL: media,
		Duration: string(r.Duration),
		Env:      r.Env,
		Risk:     r.Risk,
		Subject:  r.Subject,
		Pilot:    r.Pilot,
		Mood:     r.Mood,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// flexString decodes a string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexString(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}

func errorPayload(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.Payload.String()
	}
	return ""
}
