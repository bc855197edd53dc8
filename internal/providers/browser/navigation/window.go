package navigation

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/id"
)

// Window is a browsing context: a controller, its event target and any
// nested child contexts. The top-level window owns the joint session
// history; children record their entries in it.
type Window struct {
	id     string
	parent *Window
	ctrl   *Controller
	events *EventTarget
	loader Loader
	opts   []Option

	mu       sync.Mutex
	children []*Window
	closed   bool
}

// NewWindow creates a top-level window on about:blank.
func NewWindow(loader Loader, opts ...Option) *Window {
	return newWindow(nil, loader, opts)
}

func newWindow(parent *Window, loader Loader, opts []Option) *Window {
	w := &Window{
		id:     id.NewWindowID().String(),
		parent: parent,
		events: NewEventTarget(),
		loader: loader,
		opts:   opts,
	}
	if parent != nil {
		opts = append(opts[:len(opts):len(opts)], sharedHistory(parent.Top().ctrl))
	}
	w.ctrl = NewController(w.id, loader, w.events, opts...)
	return w
}

// OpenChild creates a nested browsing context with the same loader and options.
func (w *Window) OpenChild() (*Window, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	child := newWindow(w, w.loader, w.opts)
	w.children = append(w.children, child)
	return child, nil
}

func (w *Window) ID() string { return w.id }

// Parent returns the parent window, or nil for a top-level window.
func (w *Window) Parent() *Window { return w.parent }

// Top returns the top-level window.
func (w *Window) Top() *Window {
	t := w
	for t.parent != nil {
		t = t.parent
	}
	return t
}

// Children returns the nested windows.
func (w *Window) Children() []*Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*Window(nil), w.children...)
}

func (w *Window) Controller() *Controller { return w.ctrl }

func (w *Window) Events() *EventTarget { return w.events }

func (w *Window) Location() *Location { return w.ctrl.Location() }

// History returns this context's history object. Its length and
// traversals span the joint session owned by the top-level window.
func (w *Window) History() *History { return w.ctrl.History() }

// Close closes every descendant, then this window, and detaches it from
// its parent.
func (w *Window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	children := w.children
	w.children = nil
	w.mu.Unlock()

	for _, c := range children {
		c.Close()
	}
	w.ctrl.Close()

	if p := w.parent; p != nil {
		p.mu.Lock()
		for i, c := range p.children {
			if c == w {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
	}
}
