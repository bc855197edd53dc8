package navigation

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/clone"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/history"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/id"
)

const tracerName = "github.com/GriffinCanCode/AgentOS/navigator/navigation"

// Navigation kinds, used as metric labels and log fields.
const (
	kindPush         = "push"
	kindReplace      = "replace"
	kindReload       = "reload"
	kindTraverse     = "traverse"
	kindFragment     = "fragment"
	kindPushState    = "push_state"
	kindReplaceState = "replace_state"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithPolicy sets the navigation policy.
func WithPolicy(p *Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithMaxEntries caps the session history; 0 means unlimited. Nested
// contexts use the cap of their top-level context.
func WithMaxEntries(n int) Option {
	return func(c *Controller) { c.maxEntries = n }
}

// WithReloadKeepsFragmentOnNoStore controls whether reloading a no-store
// document keeps the URL fragment. Cacheable documents always keep it.
func WithReloadKeepsFragmentOnNoStore(keep bool) Option {
	return func(c *Controller) { c.keepFragmentOnNoStore = keep }
}

// sharedHistory makes the controller a nested context of owner: its
// entries go into the session history owned by owner's top-level context.
func sharedHistory(owner *Controller) Option {
	return func(c *Controller) {
		c.joint = owner.joint
		c.nested = true
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Controller owns the active document of one browsing context, records its
// entries in the joint session history and classifies every navigation
// request.
type Controller struct {
	windowID              string
	loader                Loader
	dispatcher            Dispatcher
	joint                 *jointHistory
	nested                bool
	policy                *Policy
	logger                *zap.Logger
	metrics               *monitoring.Metrics
	tracer                trace.Tracer
	maxEntries            int
	keepFragmentOnNoStore bool

	mu  sync.Mutex
	doc Document
	// base is the entry shown while the context has none in the joint
	// session, such as a nested context still on its first document.
	base     history.Entry
	initial  bool
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
	queue    []Event
	flushing bool
}

// NewController creates a controller whose context starts on the initial
// about:blank document. The first navigation replaces that entry.
func NewController(windowID string, loader Loader, dispatcher Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		windowID:              windowID,
		loader:                loader,
		dispatcher:            dispatcher,
		logger:                zap.NewNop(),
		tracer:                otel.Tracer(tracerName),
		maxEntries:            history.DefaultMaxEntries,
		keepFragmentOnNoStore: true,
		initial:               true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dispatcher == nil {
		c.dispatcher = DispatcherFunc(func(Event) {})
	}
	if c.loader == nil {
		c.loader = LoaderFunc(func(context.Context, *Request) (*Response, error) {
			return &Response{Status: 200, ContentType: "text/html"}, nil
		})
	}

	blank, _ := weburl.Parse("about:blank", nil)
	c.doc = Document{
		ID:          id.NewDocumentID().String(),
		URL:         blank,
		BaseURL:     blank.Clone(),
		ContentType: "text/html",
		LoadedAt:    time.Now(),
	}
	c.base = history.NewEntry(blank, c.doc.ID)
	c.base.ContextID = windowID
	if c.joint == nil {
		c.joint = newJointHistory(c.base, c.maxEntries)
	}
	c.joint.attach(c)
	return c
}

// WindowID returns the owning window id.
func (c *Controller) WindowID() string {
	return c.windowID
}

// Document returns a copy of the active document.
func (c *Controller) Document() Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyDocument()
}

func (c *Controller) copyDocument() Document {
	d := c.doc
	d.URL = c.doc.URL.Clone()
	d.BaseURL = c.doc.BaseURL.Clone()
	return d
}

// URL returns a copy of the current document URL.
func (c *Controller) URL() weburl.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.URL.Clone()
}

// BaseURL returns the URL relative references resolve against.
func (c *Controller) BaseURL() weburl.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.BaseURL.Clone()
}

// Entries returns a copy of the joint session history and the cursor.
func (c *Controller) Entries() ([]history.Entry, int) {
	return c.joint.session.Entries(), c.joint.session.Cursor()
}

// current returns the index and a copy of the entry this context shows, or
// -1 and its base entry when it has none in the session. Caller holds mu.
func (c *Controller) current() (int, history.Entry) {
	if i, e, ok := c.joint.session.CurrentFor(c.windowID); ok {
		return i, e
	}
	return -1, c.base.Clone()
}

// push appends e to the joint session. Caller holds mu.
func (c *Controller) push(e history.Entry) error {
	e.ContextID = c.windowID
	return c.joint.session.Push(e)
}

// replaceAt overwrites the entry at idx, or the base entry when idx is -1.
// Caller holds mu.
func (c *Controller) replaceAt(idx int, e history.Entry) error {
	e.ContextID = c.windowID
	if idx < 0 {
		c.base = e.Clone()
		return nil
	}
	return c.joint.session.ReplaceAt(idx, e)
}

// hasEntry reports whether key names one of this context's entries.
// Caller holds mu.
func (c *Controller) hasEntry(key string) bool {
	return c.base.Key == key || c.joint.session.IndexOf(key) >= 0
}

// updateEntry applies fn to the entry with key. Caller holds mu.
func (c *Controller) updateEntry(key string, fn func(*history.Entry)) {
	if c.base.Key == key {
		fn(&c.base)
	}
	if i := c.joint.session.IndexOf(key); i >= 0 {
		c.joint.session.Update(i, fn)
	}
}

func (c *Controller) baseEntry() history.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base.Clone()
}

// Resolve parses raw against the document base URL.
func (c *Controller) Resolve(raw string) (weburl.Record, error) {
	base := c.BaseURL()
	return weburl.Parse(raw, &base)
}

// Close discards the context: any in-flight navigation is cancelled and
// every later request fails with ErrClosed. A top-level context closes the
// joint session; a nested one removes its own entries from it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loader.Unload(c.copyDocument())
	c.queue = nil
	c.mu.Unlock()

	if c.nested {
		c.joint.detach(c)
		return
	}
	c.joint.session.Close()
}

// enqueue stamps ev and appends it to the delivery queue. Caller holds mu.
func (c *Controller) enqueue(ev Event) {
	ev.WindowID = c.windowID
	ev.Time = time.Now()
	c.queue = append(c.queue, ev)
}

// popstate builds a popstate event carrying a fresh copy of state.
func (c *Controller) popstate(state clone.Blob) Event {
	v, err := state.Value()
	if err != nil {
		c.logger.Warn("Failed to decode history state", zap.Error(err))
	}
	return Event{Type: EventPopState, State: v}
}

// flush delivers queued events in commit order with mu released. A call
// made while another flush is running (including from a listener) leaves
// its events to the running flush.
func (c *Controller) flush() {
	c.mu.Lock()
	if c.flushing {
		c.mu.Unlock()
		return
	}
	c.flushing = true
	defer func() {
		c.flushing = false
		c.mu.Unlock()
	}()
	for len(c.queue) > 0 {
		ev := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		c.dispatch(ev)
		c.mu.Lock()
	}
}

// dispatch delivers ev with mu released. If a listener panics, mu is
// re-acquired before the panic continues so flush can unwind.
func (c *Controller) dispatch(ev Event) {
	ok := false
	defer func() {
		if !ok {
			c.mu.Lock()
		}
	}()
	c.metrics.RecordEvent(ev.Type)
	c.dispatcher.Dispatch(ev)
	ok = true
}
