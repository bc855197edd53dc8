package navigation

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/clone"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/history"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// PushState appends an entry for the live document holding a clone of
// state. The optional url is resolved against the document base URL. No
// fetch happens and no event fires.
func (c *Controller) PushState(state any, title string, url ...string) error {
	return c.updateState(state, title, url, false)
}

// ReplaceState is PushState overwriting the current entry.
func (c *Controller) ReplaceState(state any, title string, url ...string) error {
	return c.updateState(state, title, url, true)
}

func (c *Controller) updateState(state any, title string, url []string, replace bool) error {
	kind := kindPushState
	if replace {
		kind = kindReplaceState
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	target := c.doc.URL.Clone()
	if len(url) > 0 {
		resolved, err := weburl.Parse(url[0], &c.doc.BaseURL)
		if err != nil {
			c.metrics.RecordNavigation(kind, "failed", 0)
			return &SecurityError{URL: url[0], Reason: "URL could not be parsed"}
		}
		if ok, reason := canRewriteURL(c.doc.URL, resolved); !ok {
			c.metrics.RecordNavigation(kind, "failed", 0)
			return &SecurityError{URL: resolved.Href(), Reason: reason}
		}
		target = resolved
	}

	blob, err := clone.Serialize(state)
	if err != nil {
		c.metrics.RecordNavigation(kind, "failed", 0)
		return err
	}

	idx, cur := c.current()
	entry := history.NewEntry(target, c.doc.ID)
	entry.State = blob
	entry.Title = title
	entry.NoStore = c.doc.NoStore
	entry.ScrollRestoration = cur.ScrollRestoration
	if replace {
		entry.Key = cur.Key
		err = c.replaceAt(idx, entry)
	} else {
		err = c.push(entry)
	}
	if err != nil {
		return err
	}

	c.doc.URL = target
	c.initial = false
	if title != "" {
		c.doc.Title = title
	}
	c.metrics.RecordNavigation(kind, "committed", 0)
	c.logger.Debug("History state updated",
		logging.Window(c.windowID),
		zap.String("kind", kind),
		zap.String("url", target.Href()))
	return nil
}

// canRewriteURL reports whether target may replace the document URL
// without a navigation.
func canRewriteURL(doc, target weburl.Record) (bool, string) {
	if doc.Scheme != target.Scheme || doc.Username != target.Username || doc.Password != target.Password ||
		!doc.Host.Equal(target.Host) || doc.Port != target.Port {
		return false, "origin differs from the document"
	}
	switch target.Scheme {
	case "http", "https":
		return true, ""
	case "file":
		if doc.Pathname() != target.Pathname() {
			return false, "file: URLs may only change query and fragment"
		}
		return true, ""
	}
	if !doc.EqualExceptFragment(target) {
		return false, "only the fragment may change"
	}
	return true, ""
}

// State returns a fresh copy of the current entry's state.
func (c *Controller) State() (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, cur := c.current()
	return cur.State.Value()
}

// ScrollRestoration returns the current entry's scroll restoration mode.
func (c *Controller) ScrollRestoration() history.ScrollRestoration {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, cur := c.current()
	return cur.ScrollRestoration
}

// SetScrollRestoration sets the mode on the current entry. Values other
// than "auto" and "manual" are ignored.
func (c *Controller) SetScrollRestoration(mode string) {
	m := history.ScrollRestoration(mode)
	if m != history.ScrollAuto && m != history.ScrollManual {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, cur := c.current()
	c.updateEntry(cur.Key, func(e *history.Entry) { e.ScrollRestoration = m })
}
