package navigation

import "context"

// History is the script-facing history object of a browsing context. State
// and pushState act on the context's own entries; traversal moves the
// joint session.
type History struct {
	c *Controller
}

// History returns the history facade.
func (c *Controller) History() *History {
	return &History{c: c}
}

// Length counts the entries of the whole joint session, including those
// of nested contexts.
func (h *History) Length() int { return h.c.joint.session.Len() }

func (h *History) State() (any, error) { return h.c.State() }

func (h *History) ScrollRestoration() string { return string(h.c.ScrollRestoration()) }

func (h *History) SetScrollRestoration(mode string) { h.c.SetScrollRestoration(mode) }

// Go traverses by delta; Go(0) reloads.
func (h *History) Go(ctx context.Context, delta int) error { return h.c.Traverse(ctx, delta) }

func (h *History) Back(ctx context.Context) error { return h.c.Back(ctx) }

func (h *History) Forward(ctx context.Context) error { return h.c.Forward(ctx) }

func (h *History) PushState(state any, title string, url ...string) error {
	return h.c.PushState(state, title, url...)
}

func (h *History) ReplaceState(state any, title string, url ...string) error {
	return h.c.ReplaceState(state, title, url...)
}
