package navigation

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/history"
)

// jointHistory is the session history owned by a top-level context. Nested
// contexts opened under it hold the same pointer, so all their entries land
// in one list and history.length counts them together.
type jointHistory struct {
	session *history.Session

	// travMu serializes traversals across the tree; a second one waits for
	// the first to commit.
	travMu sync.Mutex

	mu       sync.Mutex
	contexts []*Controller // top first, then in creation order
}

func newJointHistory(initial history.Entry, maxEntries int) *jointHistory {
	return &jointHistory{session: history.New(initial, history.WithMaxEntries(maxEntries))}
}

func (j *jointHistory) attach(c *Controller) {
	j.mu.Lock()
	j.contexts = append(j.contexts, c)
	j.mu.Unlock()
}

// detach drops a discarded nested context and its entries.
func (j *jointHistory) detach(c *Controller) {
	j.travMu.Lock()
	defer j.travMu.Unlock()

	j.mu.Lock()
	for i, m := range j.contexts {
		if m == c {
			j.contexts = append(j.contexts[:i:i], j.contexts[i+1:]...)
			break
		}
	}
	j.mu.Unlock()
	j.session.RemoveContext(c.windowID)
}

func (j *jointHistory) members() []*Controller {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*Controller(nil), j.contexts...)
}

// traverse moves the joint cursor by delta. Every context whose current
// entry differs between the old and the new cursor is moved onto its new
// entry, and the cursor moves once all of them have committed. It reports
// false for an out-of-range delta and returns the contexts it touched so
// the caller can flush their events after travMu is released.
func (j *jointHistory) traverse(ctx context.Context, delta int) ([]*Controller, bool, error) {
	j.travMu.Lock()
	defer j.travMu.Unlock()

	from := j.session.Cursor()
	to, ok := j.session.Target(delta)
	if !ok {
		return nil, false, nil
	}

	var moved []*Controller
	for _, c := range j.members() {
		fromIdx, _, _ := j.session.LastFor(c.windowID, from)
		toIdx, target, found := j.session.LastFor(c.windowID, to)
		if fromIdx == toIdx {
			continue
		}
		if !found {
			target = c.baseEntry()
		}
		moved = append(moved, c)
		if err := c.moveTo(ctx, target); err != nil {
			return moved, true, err
		}
	}
	j.session.SetCursor(to)
	return moved, true, nil
}
