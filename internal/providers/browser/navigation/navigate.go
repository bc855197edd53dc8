package navigation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/history"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/id"
)

// pending is a full navigation waiting on the Loader.
type pending struct {
	kind   string
	target weburl.Record
	cache  CacheMode
	// entryKey names the history entry a traversal lands on.
	entryKey string
	// reloadNoStore is set when reloading a no-store document.
	reloadNoStore bool
}

// NavigateURL resolves raw against the document base URL and navigates to it.
func (c *Controller) NavigateURL(ctx context.Context, raw string, replace bool) error {
	target, err := c.Resolve(raw)
	if err != nil {
		return err
	}
	return c.Navigate(ctx, target, replace)
}

// Navigate navigates to target. A target that differs from the document URL
// only in a present fragment is a same-document navigation: it pushes an
// entry (replaces it when the URL is identical) and fires hashchange when the
// fragment changed. Anything else is a full navigation that pushes, or
// replaces when replace is set. javascript: targets are ignored.
func (c *Controller) Navigate(ctx context.Context, target weburl.Record, replace bool) error {
	if target.Scheme == "javascript" {
		c.logger.Debug("Ignoring javascript: navigation", logging.Window(c.windowID))
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	cur := c.doc.URL
	if target.Fragment != nil && target.EqualExceptFragment(cur) {
		c.navigateFragment(target, replace || target.Equal(cur))
		c.mu.Unlock()
		c.flush()
		c.metrics.RecordNavigation(kindFragment, "committed", 0)
		c.logger.Debug("Fragment navigation",
			logging.Window(c.windowID),
			zap.String("url", target.Href()))
		return nil
	}
	kind := kindPush
	if replace || target.Equal(cur) {
		kind = kindReplace
	}
	c.mu.Unlock()

	err := c.load(ctx, &pending{kind: kind, target: target.Clone(), cache: CacheDefault})
	c.flush()
	return err
}

// navigateFragment updates the URL in place. Caller holds mu.
func (c *Controller) navigateFragment(target weburl.Record, replace bool) {
	old := c.doc.URL
	idx, cur := c.current()

	entry := history.NewEntry(target, c.doc.ID)
	entry.Title = c.doc.Title
	entry.NoStore = c.doc.NoStore
	entry.ScrollRestoration = cur.ScrollRestoration
	var err error
	if replace {
		entry.Key = cur.Key
		entry.State = cur.State
		err = c.replaceAt(idx, entry)
	} else {
		err = c.push(entry)
	}
	if err != nil {
		c.logger.Warn("History update failed", zap.Error(err))
		return
	}
	c.doc.URL = target.Clone()
	if !old.FragmentEqual(target) {
		c.enqueue(Event{Type: EventHashChange, OldURL: old.Href(), NewURL: target.Href()})
	}
}

// Reload reloads the document. forceGet bypasses caches.
func (c *Controller) Reload(ctx context.Context, forceGet bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	p := &pending{
		kind:          kindReload,
		target:        c.doc.URL.Clone(),
		cache:         CacheDefault,
		reloadNoStore: c.doc.NoStore,
	}
	c.mu.Unlock()
	if forceGet {
		p.cache = CacheReload
	}
	err := c.load(ctx, p)
	c.flush()
	return err
}

// load runs a full navigation. History is only touched once the Loader
// succeeds and no newer navigation has started in the meantime. The load
// event is queued; callers flush.
func (c *Controller) load(ctx context.Context, p *pending) error {
	start := time.Now()
	href := p.target.Href()
	log := c.logger.With(
		logging.Window(c.windowID),
		zap.String("kind", p.kind),
		zap.String("url", href))

	if c.policy.Blocks(p.target) {
		c.metrics.RecordNavigation(p.kind, "blocked", 0)
		log.Warn("Navigation blocked by policy")
		return fmt.Errorf("%w: %s", ErrBlocked, href)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	req := &Request{
		URL:      withoutFragment(p.target),
		Method:   http.MethodGet,
		Cache:    p.cache,
		Referrer: c.referrer(),
	}
	c.mu.Unlock()
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "navigation.load", trace.WithAttributes(
		attribute.String("navigation.kind", p.kind),
		attribute.String("navigation.cache", string(p.cache)),
		attribute.String("url.full", req.URL.Href()),
		attribute.String("window.id", c.windowID),
	))
	defer span.End()

	resp, err := c.loader.Load(ctx, req)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		span.SetStatus(codes.Error, "closed")
		return ErrClosed
	}
	if gen != c.gen {
		c.mu.Unlock()
		span.SetStatus(codes.Error, "superseded")
		c.metrics.RecordNavigation(p.kind, "superseded", time.Since(start))
		log.Debug("Navigation superseded")
		return ErrSuperseded
	}
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.RecordNavigation(p.kind, "failed", time.Since(start))
		log.Warn("Navigation failed", zap.Error(err))
		return &NetworkError{URL: href, Err: err}
	}
	doc := c.newDocument(p, resp)
	err = c.commit(p, doc)
	c.mu.Unlock()
	if err != nil {
		c.metrics.RecordNavigation(p.kind, "superseded", time.Since(start))
		log.Debug("Navigation not committed", zap.Error(err))
		return err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", doc.Status))
	c.metrics.RecordNavigation(p.kind, "committed", time.Since(start))
	log.Info("Navigation committed",
		zap.String("final_url", doc.URL.Href()),
		zap.Int("status", doc.Status),
		zap.Bool("no_store", doc.NoStore),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// referrer is the document URL without fragment, or "" for the initial
// about:blank document. Caller holds mu.
func (c *Controller) referrer() string {
	if c.initial {
		return ""
	}
	switch c.doc.URL.Scheme {
	case "http", "https":
		r := c.doc.URL.Clone()
		r.Username, r.Password = "", ""
		return r.HrefWithoutFragment()
	}
	return ""
}

// newDocument builds the replacement document. The final URL keeps the
// requested fragment when the response URL has none. Caller holds mu.
func (c *Controller) newDocument(p *pending, resp *Response) Document {
	final := p.target.Clone()
	if resp.URL != "" {
		if u, err := weburl.Parse(resp.URL, nil); err == nil {
			if u.Fragment == nil && p.target.Fragment != nil {
				f := *p.target.Fragment
				u.Fragment = &f
			}
			final = u
		} else {
			c.logger.Warn("Loader returned an unparsable URL", zap.String("url", resp.URL))
		}
	}
	if p.kind == kindReload && p.reloadNoStore && !c.keepFragmentOnNoStore {
		final.Fragment = nil
	}

	base := final.Clone()
	if resp.BaseHref != "" {
		if b, err := weburl.Parse(resp.BaseHref, &final); err == nil {
			base = b
		}
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	return Document{
		ID:          id.NewDocumentID().String(),
		URL:         final,
		BaseURL:     base,
		Title:       resp.Title,
		Status:      status,
		ContentType: resp.ContentType,
		NoStore:     resp.NoStore,
		HTML:        resp.HTML,
		LoadedAt:    time.Now(),
	}
}

// commit unloads the old document, installs doc and updates history. A
// traversal only rewrites its target entry; the joint cursor is moved by
// the traversal itself. Caller holds mu.
func (c *Controller) commit(p *pending, doc Document) error {
	if p.kind == kindTraverse && !c.hasEntry(p.entryKey) {
		return ErrSuperseded
	}

	wasInitial := c.initial
	c.loader.Unload(c.copyDocument())
	c.doc = doc
	c.initial = false

	idx, cur := c.current()
	entry := history.NewEntry(doc.URL, doc.ID)
	entry.Title = doc.Title
	entry.NoStore = doc.NoStore

	var err error
	switch p.kind {
	case kindPush:
		if wasInitial {
			err = c.replaceAt(idx, entry)
		} else {
			err = c.push(entry)
		}
	case kindReplace:
		entry.Key = cur.Key
		err = c.replaceAt(idx, entry)
	default:
		key := p.entryKey
		if key == "" {
			key = cur.Key
		}
		c.updateEntry(key, func(e *history.Entry) {
			e.URL = doc.URL.Clone()
			e.DocumentID = doc.ID
			e.Title = doc.Title
			e.NoStore = doc.NoStore
		})
	}
	if err != nil {
		return err
	}
	c.enqueue(Event{Type: EventLoad, NewURL: doc.URL.Href()})
	return nil
}

func withoutFragment(r weburl.Record) weburl.Record {
	out := r.Clone()
	out.Fragment = nil
	return out
}
