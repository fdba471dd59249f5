package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func newTestQueue(api *fakeAPI, delay time.Duration) *Queue {
	q := NewQueue(active, api, NewCache(active, api))
	q.delay = delay
	return q
}

func TestQueueInactiveModeIgnoresEnqueue(t *testing.T) {
	api := &fakeAPI{}
	q := NewQueue(Mode{}, api, nil)

	q.Enqueue(Patch{FieldCover: "x"})
	if err := q.Flush(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Pending() != nil {
		t.Error("expected nothing pending")
	}
	if len(api.calls) != 0 {
		t.Errorf("expected no calls, got %d", len(api.calls))
	}
}

func TestQueueDebouncesIntoOnePatch(t *testing.T) {
	api := &fakeAPI{}
	q := newTestQueue(api, 20*time.Millisecond)

	q.EnqueueLibrary(map[string]any{"a": 1})
	q.EnqueueLibrary(map[string]any{"b": 2})
	q.Enqueue(Patch{FieldCover: "c.jpg", "skip": nil})

	waitFor(t, func() bool { return api.count("PATCH") == 1 && !q.InFlight() })

	call, _ := api.last("PATCH")
	want := Patch{
		FieldLibrary: map[string]any{"a": 1, "b": 2},
		FieldCover:   "c.jpg",
	}
	if !reflect.DeepEqual(call.body, want) {
		t.Errorf("expected body %v, got %v", want, call.body)
	}
	if call.path != "/v1/sessions/s1" || call.durable {
		t.Errorf("unexpected call %+v", call)
	}
	if q.Pending() != nil {
		t.Errorf("expected nothing pending, got %v", q.Pending())
	}
}

func TestQueueEnqueueLibraryIgnoresNil(t *testing.T) {
	q := newTestQueue(&fakeAPI{}, time.Hour)
	defer q.Stop()

	q.EnqueueLibrary(nil)
	if q.Pending() != nil {
		t.Errorf("expected nothing pending, got %v", q.Pending())
	}
}

func TestQueueSuccessRefreshesCache(t *testing.T) {
	api := &fakeAPI{}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{FieldCover: "a"})
	if err := q.Flush(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := api.count("GET"); n != 1 {
		t.Errorf("expected a forced refresh, got %d GETs", n)
	}
}

func TestQueueUrgentUsesDurableCall(t *testing.T) {
	api := &fakeAPI{}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{FieldCover: "a"})
	if err := q.Flush(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := api.last("PATCH")
	if !ok || !call.durable {
		t.Errorf("expected durable PATCH, got %+v", call)
	}
}

func TestQueueFlushNothingPending(t *testing.T) {
	api := &fakeAPI{}
	q := newTestQueue(api, time.Hour)

	if err := q.Flush(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := api.count("PATCH"); n != 0 {
		t.Errorf("expected no PATCH, got %d", n)
	}
}

func TestQueueFailureKeepsPatch(t *testing.T) {
	errDown := errors.New("down")
	api := &fakeAPI{patchFn: func(any) error { return errDown }}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{FieldLibrary: map[string]any{"a": 1}})
	if err := q.Flush(context.Background(), false); !errors.Is(err, errDown) {
		t.Fatalf("expected %v, got %v", errDown, err)
	}

	want := Patch{FieldLibrary: map[string]any{"a": 1}}
	if got := q.Pending(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v pending, got %v", want, got)
	}
	if n := api.count("GET"); n != 0 {
		t.Errorf("expected no refresh after failure, got %d", n)
	}
}

func TestQueueFailureMergesUnderNewerEdits(t *testing.T) {
	block := make(chan struct{})
	api := &fakeAPI{
		block:   block,
		patchFn: func(any) error { return errors.New("down") },
	}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{
		FieldLibrary: map[string]any{"x": 1, "y": 1},
		FieldCover:   "a.jpg",
	})

	done := make(chan error, 1)
	go func() { done <- q.Flush(context.Background(), false) }()
	waitFor(t, q.InFlight)

	q.Enqueue(Patch{FieldLibrary: map[string]any{"y": 2}, FieldCover: "c.jpg"})

	// A second flush while one is outstanding is a no-op.
	if err := q.Flush(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := api.count("PATCH"); n != 1 {
		t.Fatalf("expected 1 PATCH, got %d", n)
	}

	close(block)
	if err := <-done; err == nil {
		t.Fatal("expected flush error")
	}

	want := Patch{
		FieldLibrary: map[string]any{"x": 1, "y": 2},
		FieldCover:   "c.jpg",
	}
	if got := q.Pending(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v pending, got %v", want, got)
	}
}

func TestQueueEmptyPatchStillFlushes(t *testing.T) {
	api := &fakeAPI{}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{"undefined": nil})
	if err := q.Flush(context.Background(), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call, ok := api.last("PATCH")
	if !ok {
		t.Fatal("expected a PATCH")
	}
	if body, _ := call.body.(Patch); len(body) != 0 {
		t.Errorf("expected empty body, got %v", call.body)
	}
}

func TestQueueSettleSendsEditsQueuedBehindInFlightWrite(t *testing.T) {
	block := make(chan struct{})
	api := &fakeAPI{block: block}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{FieldLibrary: map[string]any{"filtered_count": 4}})
	go func() { _ = q.Flush(context.Background(), false) }()
	waitFor(t, q.InFlight)

	q.Enqueue(Patch{FieldLibrary: map[string]any{"filtered_count": 7}})
	time.AfterFunc(30*time.Millisecond, func() { close(block) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Settle(ctx); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if n := api.count("PATCH"); n != 2 {
		t.Fatalf("expected 2 PATCHes, got %d", n)
	}
	call, _ := api.last("PATCH")
	if !call.durable {
		t.Error("expected the final write to be durable")
	}
	want := Patch{FieldLibrary: map[string]any{"filtered_count": 7}}
	if !reflect.DeepEqual(call.body, want) {
		t.Errorf("expected %v, got %v", want, call.body)
	}
	if q.Pending() != nil {
		t.Errorf("expected nothing pending, got %v", q.Pending())
	}
}

func TestQueueSettleBoundedByContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	api := &fakeAPI{block: block}
	q := newTestQueue(api, time.Hour)
	defer q.Stop()

	q.Enqueue(Patch{FieldCover: "a.jpg"})
	go func() { _ = q.Flush(context.Background(), false) }()
	waitFor(t, q.InFlight)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := q.Settle(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
