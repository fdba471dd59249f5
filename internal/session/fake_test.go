package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
)

type call struct {
	method  string
	path    string
	body    any
	durable bool
}

type fakeAPI struct {
	mu      sync.Mutex
	calls   []call
	doc     string
	getErr  error
	patchFn func(body any) error
	block   chan struct{}
}

func (f *fakeAPI) Call(ctx context.Context, method, path string, body any) (apiclient.Payload, error) {
	return f.record(method, path, body, false)
}

func (f *fakeAPI) CallDurable(ctx context.Context, method, path string, body any) (apiclient.Payload, error) {
	return f.record(method, path, body, true)
}

func (f *fakeAPI) record(method, path string, body any, durable bool) (apiclient.Payload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{method: method, path: path, body: body, durable: durable})
	block := f.block
	patchFn := f.patchFn
	doc := f.doc
	getErr := f.getErr
	f.mu.Unlock()

	if method == "PATCH" {
		if block != nil {
			<-block
		}
		if patchFn != nil {
			if err := patchFn(body); err != nil {
				return apiclient.Payload{}, err
			}
		}
		return apiclient.Payload{JSON: json.RawMessage(`{"ok":true}`)}, nil
	}
	if getErr != nil {
		return apiclient.Payload{}, getErr
	}
	if doc == "" {
		doc = `{"session":{"id":"s1","status":"active"}}`
	}
	return apiclient.Payload{JSON: json.RawMessage(doc)}, nil
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeAPI) last(method string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i], true
		}
	}
	return call{}, false
}

var active = Mode{Session: true, ID: "s1"}
