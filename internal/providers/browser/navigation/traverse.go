package navigation

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/history"
)

// Traverse moves through the joint session history by delta. A delta of
// zero reloads. Out-of-range deltas are a silent no-op. Each context whose
// entry changes is restored in place when its target entry is reachable
// without a fetch, otherwise it is loaded with a full navigation. The
// cursor moves once every affected context has committed.
func (c *Controller) Traverse(ctx context.Context, delta int) error {
	if delta == 0 {
		return c.Reload(ctx, false)
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	moved, ok, err := c.joint.traverse(ctx, delta)
	if !ok {
		c.metrics.RecordTraversal("noop")
		c.logger.Debug("Traversal out of range",
			logging.Window(c.windowID),
			zap.Int("delta", delta))
		return nil
	}
	for _, m := range moved {
		m.flush()
	}
	return err
}

// moveTo brings this context onto target during a joint traversal.
func (c *Controller) moveTo(ctx context.Context, target history.Entry) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.restorable(target) {
		c.restore(target)
		c.mu.Unlock()
		c.metrics.RecordTraversal("same_document")
		c.metrics.RecordNavigation(kindTraverse, "committed", 0)
		return nil
	}
	c.mu.Unlock()

	c.metrics.RecordTraversal("full")
	return c.load(ctx, &pending{
		kind:     kindTraverse,
		target:   target.URL.Clone(),
		cache:    CacheDefault,
		entryKey: target.Key,
	})
}

// restorable reports whether target can be shown without a fetch. An entry
// that differs from the live document only in its fragment needs a
// cacheable resource. Any other entry must have been created by the live
// document through pushState. Caller holds mu.
func (c *Controller) restorable(target history.Entry) bool {
	if target.URL.EqualExceptFragment(c.doc.URL) {
		return !target.NoStore
	}
	return target.DocumentID == c.doc.ID
}

// Back is Traverse(-1).
func (c *Controller) Back(ctx context.Context) error {
	return c.Traverse(ctx, -1)
}

// Forward is Traverse(1).
func (c *Controller) Forward(ctx context.Context) error {
	return c.Traverse(ctx, 1)
}

// restore applies a same-document traversal. Caller holds mu.
func (c *Controller) restore(target history.Entry) {
	old := c.doc.URL
	c.updateEntry(target.Key, func(e *history.Entry) { e.DocumentID = c.doc.ID })
	c.doc.URL = target.URL.Clone()
	if !old.FragmentEqual(target.URL) {
		c.enqueue(Event{Type: EventHashChange, OldURL: old.Href(), NewURL: target.URL.Href()})
	}
	c.enqueue(c.popstate(target.State))
}
