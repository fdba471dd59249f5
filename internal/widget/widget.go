package widget

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/filter"
	"github.com/SLASHOO/SkyMotion-Library/internal/identity"
	"github.com/SLASHOO/SkyMotion-Library/internal/saved"
	"github.com/SLASHOO/SkyMotion-Library/internal/session"
	"github.com/SLASHOO/SkyMotion-Library/internal/tracker"
)

const (
	DefaultProfilePath = "/profile"
	maxFilteredCount   = 999999
)

var (
	ErrNoVideo = errors.New("no video at that position")
	ErrNoMedia = errors.New("video has no media url")
)

// API is the subset of the API client the widget drives.
type API interface {
	Call(ctx context.Context, method, path string, body any) (apiclient.Payload, error)
	CallDurable(ctx context.Context, method, path string, body any) (apiclient.Payload, error)
	Drain(ctx context.Context) error
}

type Config struct {
	// Location is the page URL carrying mode and sess.
	Location string
	// SessionFlag enables session mode without mode=session in Location.
	SessionFlag     bool
	ProfilePath     string
	IdentityTimeout time.Duration
}

type Deps struct {
	API      API
	Identity apiclient.Identity
	Catalog  catalog.Source
}

// Widget owns one synchronization context: the mode and every component
// bound to it.
type Widget struct {
	mode            session.Mode
	location        string
	profilePath     string
	identityTimeout time.Duration

	api      API
	identity apiclient.Identity
	source   catalog.Source

	cache   *session.Cache
	queue   *session.Queue
	saved   *saved.Store
	filter  *filter.Engine
	tracker *tracker.Tracker

	state *viewState
}

func New(cfg Config, deps Deps) (*Widget, error) {
	mode, location, err := session.ParseLocation(cfg.Location, cfg.SessionFlag)
	if err != nil {
		return nil, err
	}
	if deps.API == nil {
		return nil, errors.New("widget: api client is required")
	}

	w := &Widget{
		mode:            mode,
		location:        location,
		profilePath:     cfg.ProfilePath,
		identityTimeout: cfg.IdentityTimeout,
		api:             deps.API,
		identity:        deps.Identity,
		source:          deps.Catalog,
		state:           newViewState(),
	}
	if w.profilePath == "" {
		w.profilePath = DefaultProfilePath
	}
	if w.identityTimeout <= 0 {
		w.identityTimeout = identity.DefaultTimeout
	}

	w.cache = session.NewCache(mode, deps.API)
	w.queue = session.NewQueue(mode, deps.API, w.cache)
	w.saved = saved.NewStore(deps.API)
	w.tracker = tracker.New(mode, w.cache, w.queue)
	w.filter = filter.New(w.onFilterChange)
	return w, nil
}

func (w *Widget) onFilterChange(count int) {
	if !w.mode.Session {
		return
	}
	w.queue.EnqueueLibrary(map[string]any{"filtered_count": count})
}

// Init primes identity, saved items, the session snapshot and the catalog.
// None of these steps fail the widget; a catalog failure is reported by
// CatalogError.
func (w *Widget) Init(ctx context.Context) {
	if w.identity != nil {
		if m := w.identity.Resolve(ctx, w.identityTimeout); m == nil {
			slog.Info("widget: member not resolved, continuing signed out")
		}
	}

	w.saved.Hydrate(ctx)
	w.cache.Get(ctx, true)

	if w.source == nil {
		w.state.setCatalogErr(catalog.ErrNoSource)
		return
	}
	videos, err := w.source.Load(ctx)
	if err != nil {
		slog.Error("widget: catalog load failed", "error", err)
		w.state.setCatalogErr(err)
		return
	}
	w.state.setCatalogErr(nil)
	w.filter.SetCatalog(videos)
}

func (w *Widget) Mode() session.Mode { return w.mode }

// Location is the page URL with legacy markers removed.
func (w *Widget) Location() string { return w.location }

func (w *Widget) CatalogError() error { return w.state.catalogErr() }

func (w *Widget) Answer(label string) error { return w.filter.Answer(label) }
func (w *Widget) Back() bool                { return w.filter.Back() }
func (w *Widget) Reset()                    { w.filter.Reset() }
func (w *Widget) More()                     { w.filter.More() }
func (w *Widget) HasMore() bool             { return w.filter.HasMore() }
func (w *Widget) Count() int                { return w.filter.Count() }
func (w *Widget) CatalogSize() int          { return w.filter.CatalogSize() }

func (w *Widget) Visible() []catalog.Video  { return w.filter.Visible() }
func (w *Widget) Filtered() []catalog.Video { return w.filter.Filtered() }
func (w *Widget) Transcript() []filter.Line { return w.filter.Transcript() }

func (w *Widget) Current() (filter.Step, bool) { return w.filter.Current() }

// Open plays the filtered video at index, recording it as opened and picked.
func (w *Widget) Open(ctx context.Context, index int) (catalog.Video, error) {
	filtered := w.filter.Filtered()
	if index < 0 || index >= len(filtered) {
		return catalog.Video{}, ErrNoVideo
	}
	v := filtered[index]
	if v.MediaURL() == "" {
		return catalog.Video{}, ErrNoMedia
	}

	w.state.setCurrent(index)
	w.tracker.Open(ctx, v)
	w.tracker.Select(v)
	return v, nil
}

// Next opens the video after the one playing.
func (w *Widget) Next(ctx context.Context) (catalog.Video, error) {
	cur, ok := w.state.current()
	if !ok {
		return catalog.Video{}, ErrNoVideo
	}
	return w.Open(ctx, cur+1)
}

// Prev opens the video before the one playing.
func (w *Widget) Prev(ctx context.Context) (catalog.Video, error) {
	cur, ok := w.state.current()
	if !ok || cur == 0 {
		return catalog.Video{}, ErrNoVideo
	}
	return w.Open(ctx, cur-1)
}

// ClosePlayer forgets the playing video.
func (w *Widget) ClosePlayer() { w.state.clearCurrent() }

// ToggleSaved saves or unsaves the filtered video at index and returns the
// resulting state.
func (w *Widget) ToggleSaved(ctx context.Context, index int) (bool, error) {
	filtered := w.filter.Filtered()
	if index < 0 || index >= len(filtered) {
		return false, ErrNoVideo
	}
	return w.saved.Toggle(ctx, filtered[index]), nil
}

func (w *Widget) IsSaved(v catalog.Video) bool {
	return w.saved.IsSaved(catalog.KeyOf(v).Value)
}

func (w *Widget) SavedItems() []saved.Item { return w.saved.Items() }

// EndSession delivers the final filtered count, marks the session done and
// returns where to navigate next.
func (w *Widget) EndSession(ctx context.Context) string {
	if !w.mode.Active() {
		return w.profilePath
	}

	w.queue.EnqueueLibrary(map[string]any{
		"filtered_count": clamp(w.filter.Count(), 0, maxFilteredCount),
	})
	_ = w.queue.Flush(ctx, true)

	if _, err := w.api.CallDurable(ctx, http.MethodPost, session.Path(w.mode.ID)+"/done", nil); err != nil {
		slog.Warn("widget: session done failed",
			"session", w.mode.ID,
			"status", apiclient.StatusOf(err),
			"error", err,
		)
	}
	return w.profilePath
}

// Hide sends pending changes immediately, detached from ctx cancellation.
func (w *Widget) Hide(ctx context.Context) {
	_ = w.queue.Flush(ctx, true)
}

// Close flushes and stops timers. A write already in flight is awaited so
// changes enqueued behind it are sent too; then outstanding durable sends
// are drained. ctx bounds the whole wait.
func (w *Widget) Close(ctx context.Context) error {
	w.Hide(ctx)
	w.queue.Stop()
	if err := w.queue.Settle(ctx); err != nil && ctx.Err() != nil {
		return err
	}
	return w.api.Drain(ctx)
}

// URL builds an in-app link that keeps the session parameters.
func (w *Widget) URL(path string) string { return w.mode.URL(path) }

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
