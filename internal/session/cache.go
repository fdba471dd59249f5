package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
)

// FreshFor is how long a snapshot is served without a network read.
const FreshFor = 4 * time.Second

const snapshotKey = "snapshot"

// Caller is the part of the API client used for reads.
type Caller interface {
	Call(ctx context.Context, method, path string, body any) (apiclient.Payload, error)
}

// Cache is a short-lived read cache of the session document. A failed read
// falls back to the last snapshot it saw.
type Cache struct {
	mode  Mode
	api   Caller
	fresh *cache.Cache
	group singleflight.Group

	mu   sync.Mutex
	last *Document
}

func NewCache(mode Mode, api Caller) *Cache {
	return &Cache{
		mode:  mode,
		api:   api,
		fresh: cache.New(FreshFor, 0),
	}
}

// Get returns the session document, reading through when the snapshot is
// older than FreshFor or force is set. It returns nil outside session mode.
func (c *Cache) Get(ctx context.Context, force bool) *Document {
	if !c.mode.Active() {
		return nil
	}
	if !force {
		if x, found := c.fresh.Get(snapshotKey); found {
			return x.(*Document)
		}
		v, _, _ := c.group.Do(snapshotKey, func() (any, error) {
			return c.fetch(ctx), nil
		})
		return v.(*Document)
	}
	return c.fetch(ctx)
}

// Last returns the most recent snapshot regardless of age.
func (c *Cache) Last() *Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Invalidate makes the next Get read through.
func (c *Cache) Invalidate() {
	c.fresh.Delete(snapshotKey)
}

func (c *Cache) fetch(ctx context.Context) *Document {
	payload, err := c.api.Call(ctx, http.MethodGet, Path(c.mode.ID), nil)
	if err != nil {
		slog.Warn("session: fetch failed",
			"session", c.mode.ID,
			"status", apiclient.StatusOf(err),
			"payload", errorPayload(err),
			"error", err,
		)
		return c.Last()
	}

	doc := decodeDocument(payload)
	c.mu.Lock()
	c.last = doc
	c.mu.Unlock()
	c.fresh.SetDefault(snapshotKey, doc)
	return doc
}

// decodeDocument accepts {"session": {...}} as well as a bare document.
func decodeDocument(payload apiclient.Payload) *Document {
	if !payload.IsJSON() || string(bytes.TrimSpace(payload.JSON)) == "null" {
		return nil
	}
	var envelope struct {
		Session *Document `json:"session"`
	}
	if err := payload.Decode(&envelope); err == nil && envelope.Session != nil {
		return envelope.Session
	}
	var doc Document
	if err := payload.Decode(&doc); err != nil {
		return nil
	}
	return &doc
}

func errorPayload(err error) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.Payload.String()
	}
	return ""
}
