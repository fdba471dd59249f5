package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
)

// DefaultDelay is the debounce between the last enqueue and the flush.
const DefaultDelay = 250 * time.Millisecond

const settleInterval = 10 * time.Millisecond

// Sender is the part of the API client used for writes.
type Sender interface {
	Call(ctx context.Context, method, path string, body any) (apiclient.Payload, error)
	CallDurable(ctx context.Context, method, path string, body any) (apiclient.Payload, error)
}

// Queue accumulates partial session updates and writes them in debounced
// batches. At most one write is in flight; a failed write is merged back
// under whatever was enqueued meanwhile so nothing is lost.
type Queue struct {
	mode  Mode
	api   Sender
	cache *Cache
	delay time.Duration

	mu       sync.Mutex
	pending  Patch
	timer    *time.Timer
	inFlight bool
}

func NewQueue(mode Mode, api Sender, cache *Cache) *Queue {
	return &Queue{
		mode:  mode,
		api:   api,
		cache: cache,
		delay: DefaultDelay,
	}
}

// Enqueue merges p into the pending patch and re-arms the debounce timer.
func (q *Queue) Enqueue(p Patch) {
	if !q.mode.Active() {
		return
	}
	cleaned := Clean(p)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = Merge(q.pending, cleaned)
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.delay, q.flushOnTimer)
}

// EnqueueLibrary enqueues a partial library_results_json.
func (q *Queue) EnqueueLibrary(partial map[string]any) {
	if partial == nil {
		return
	}
	q.Enqueue(Patch{FieldLibrary: partial})
}

func (q *Queue) flushOnTimer() {
	_ = q.Flush(context.Background(), false)
}

// Flush sends the pending patch. It does nothing outside session mode, while
// another flush is in flight, or when nothing is pending. urgent sends use
// the durable mode so the write outlives the caller. On failure the patch is
// restored and the error returned; the next enqueue or flush retries.
func (q *Queue) Flush(ctx context.Context, urgent bool) error {
	if !q.mode.Active() {
		return nil
	}

	q.mu.Lock()
	if q.inFlight || q.pending == nil {
		q.mu.Unlock()
		return nil
	}
	body := q.pending
	q.pending = nil
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.inFlight = true
	q.mu.Unlock()

	path := Path(q.mode.ID)
	var err error
	if urgent {
		_, err = q.api.CallDurable(ctx, http.MethodPatch, path, body)
	} else {
		_, err = q.api.Call(ctx, http.MethodPatch, path, body)
	}
	if err == nil && q.cache != nil {
		q.cache.Get(ctx, true)
	}

	q.mu.Lock()
	if err != nil {
		q.pending = Merge(body, q.pending)
	}
	q.inFlight = false
	q.mu.Unlock()

	if err != nil {
		slog.Warn("session: patch failed",
			"session", q.mode.ID,
			"urgent", urgent,
			"status", apiclient.StatusOf(err),
			"payload", errorPayload(err),
			"error", err,
		)
		return err
	}
	return nil
}

// Settle waits for an outstanding write to finish, bounded by ctx, and then
// sends whatever was enqueued meanwhile as an urgent flush.
func (q *Queue) Settle(ctx context.Context) error {
	if q.InFlight() {
		ticker := time.NewTicker(settleInterval)
		defer ticker.Stop()
		for q.InFlight() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
	return q.Flush(ctx, true)
}

// Pending returns a copy of the patch waiting to be sent, or nil.
func (q *Queue) Pending() Patch {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return nil
	}
	return Merge(nil, q.pending)
}

// InFlight reports whether a write is outstanding.
func (q *Queue) InFlight() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// Stop cancels the debounce timer without flushing.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
