package tracker

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/session"
)

// Snapshotter reads the session document.
type Snapshotter interface {
	Get(ctx context.Context, force bool) *session.Document
}

// Enqueuer accepts partial session updates.
type Enqueuer interface {
	Enqueue(p session.Patch)
}

// Tracker records which videos were opened and which one was picked last.
type Tracker struct {
	mode  session.Mode
	cache Snapshotter
	queue Enqueuer
	now   func() time.Time

	mu     sync.Mutex
	seeded bool
	dirty  bool
	opened []string
	seen   map[string]bool
}

func New(mode session.Mode, cache Snapshotter, queue Enqueuer) *Tracker {
	return &Tracker{
		mode:  mode,
		cache: cache,
		queue: queue,
		now:   time.Now,
		seen:  make(map[string]bool),
	}
}

// seed merges opened_videos from the session into the local set. A nil
// snapshot leaves the set unseeded so the next open reads it again.
func (t *Tracker) seed(ctx context.Context) {
	t.mu.Lock()
	seeded := t.seeded
	t.mu.Unlock()
	if seeded {
		return
	}

	doc := t.cache.Get(ctx, false)
	if doc == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seeded {
		return
	}
	local := t.opened
	t.opened = nil
	t.seen = make(map[string]bool, len(local))
	for _, id := range doc.OpenedVideos() {
		t.addLocked(id)
	}
	for _, id := range local {
		if t.addLocked(id) {
			t.dirty = true
		}
	}
	t.seeded = true
}

// Open adds v to the opened set and enqueues the full list when it changed.
// Until the session has been read the id is only kept locally, since the
// list replaces the stored one.
func (t *Tracker) Open(ctx context.Context, v catalog.Video) {
	if !t.mode.Active() {
		return
	}
	id := strings.TrimSpace(catalog.KeyOf(v).Value)
	if id == "" {
		return
	}

	t.seed(ctx)

	t.mu.Lock()
	added := t.addLocked(id)
	if !t.seeded || (!added && !t.dirty) {
		t.mu.Unlock()
		return
	}
	t.dirty = false
	list := make([]any, len(t.opened))
	for i, o := range t.opened {
		list[i] = o
	}
	t.mu.Unlock()

	t.queue.Enqueue(session.Patch{
		session.FieldLibrary: map[string]any{"opened_videos": list},
	})
}

// Select records v as the picked video and uses its thumbnail as the cover.
func (t *Tracker) Select(v catalog.Video) {
	if !t.mode.Active() {
		return
	}
	selected := map[string]any{
		"title":     v.Title,
		"videoUrl":  v.MediaURL(),
		"thumb":     v.Thumb,
		"duration":  string(v.Duration),
		"picked_at": t.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	var cover any = session.Null
	if v.Thumb != "" {
		cover = v.Thumb
	}
	t.queue.Enqueue(session.Patch{
		session.FieldLibrary: map[string]any{"selected_video": selected},
		session.FieldCover:   cover,
	})
}

// Opened returns the opened ids in first-open order.
func (t *Tracker) Opened() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.opened...)
}

func (t *Tracker) addLocked(id string) bool {
	if t.seen[id] {
		return false
	}
	t.seen[id] = true
	t.opened = append(t.opened, id)
	return true
}
