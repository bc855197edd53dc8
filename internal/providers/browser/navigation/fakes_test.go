package navigation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu       sync.Mutex
	requests []Request
	unloaded []string
	pages    map[string]Response
	gates    map[string]chan struct{}
	err      error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		pages: map[string]Response{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeLoader) Load(ctx context.Context, req *Request) (*Response, error) {
	href := req.URL.Href()
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	gate := f.gates[href]
	resp, ok := f.pages[href]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		resp = Response{Status: 200, ContentType: "text/html"}
	}
	return &resp, nil
}

func (f *fakeLoader) Unload(doc Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unloaded = append(f.unloaded, doc.Href())
}

func (f *fakeLoader) page(href string, resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[href] = resp
}

func (f *fakeLoader) gate(href string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[href] = ch
	return ch
}

func (f *fakeLoader) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeLoader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeLoader) last() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Dispatch(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) take() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func eventTypes(events []Event) []string {
	out := []string{}
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *fakeLoader, *recorder) {
	t.Helper()
	loader := newFakeLoader()
	rec := &recorder{}
	c := NewController("win_test", loader, rec, opts...)
	t.Cleanup(c.Close)
	return c, loader, rec
}

// open navigates to href and drops the resulting load event.
func open(t *testing.T, c *Controller, rec *recorder, href string) {
	t.Helper()
	require.NoError(t, c.NavigateURL(context.Background(), href, false))
	rec.take()
}
