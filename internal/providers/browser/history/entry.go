package history

import (
	"github.com/google/uuid"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/clone"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// ScrollRestoration is the per-entry scroll restoration mode.
type ScrollRestoration string

const (
	ScrollAuto   ScrollRestoration = "auto"
	ScrollManual ScrollRestoration = "manual"
)

// Entry is one session history entry. DocumentID ties entries created by
// pushState or fragment navigation to the document that created them.
// ContextID names the browsing context (window id) the entry belongs to.
type Entry struct {
	Key               string
	ContextID         string
	URL               weburl.Record
	State             clone.Blob
	Title             string
	DocumentID        string
	NoStore           bool
	ScrollRestoration ScrollRestoration
}

// NewEntry creates an entry with a fresh key.
func NewEntry(url weburl.Record, documentID string) Entry {
	return Entry{
		Key:               uuid.NewString(),
		URL:               url.Clone(),
		DocumentID:        documentID,
		ScrollRestoration: ScrollAuto,
	}
}

// Clone returns a deep copy.
func (e Entry) Clone() Entry {
	out := e
	out.URL = e.URL.Clone()
	if e.State != nil {
		out.State = append(clone.Blob(nil), e.State...)
	}
	return out
}
