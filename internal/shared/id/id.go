// Package id provides ID generation for browsing contexts, documents and
// API requests.
//
// IDs are ULIDs behind a kind prefix (win_*, doc_*, req_*), so they sort by
// creation time and are recognisable in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind is the prefix naming what an ID identifies.
type Kind string

const (
	KindWindow   Kind = "win"
	KindDocument Kind = "doc"
	KindRequest  Kind = "req"
)

// WindowID identifies a browsing context
type WindowID string

// DocumentID identifies a loaded document within a browsing context
type DocumentID string

// RequestID identifies an API request
type RequestID string

// Generator issues prefixed ULIDs. Entropy is monotonic, so IDs minted in
// the same millisecond still sort in issue order.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(nil)
	})
	return defaultGenerator
}

// NewGenerator creates a generator over entropy, or crypto/rand when nil.
func NewGenerator(entropy io.Reader) *Generator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{entropy: ulid.Monotonic(entropy, 0)}
}

// ULID returns a bare ULID.
func (g *Generator) ULID() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// New returns kind_ULID.
func (g *Generator) New(kind Kind) string {
	return string(kind) + "_" + g.ULID().String()
}

func NewWindowID() WindowID     { return WindowID(Default().New(KindWindow)) }
func NewDocumentID() DocumentID { return DocumentID(Default().New(KindDocument)) }
func NewRequestID() RequestID   { return RequestID(Default().New(KindRequest)) }

func (id WindowID) String() string   { return string(id) }
func (id DocumentID) String() string { return string(id) }
func (id RequestID) String() string  { return string(id) }

// Split separates a prefixed ID into its kind and ULID.
func Split(s string) (Kind, ulid.ULID, error) {
	kind, rest, ok := strings.Cut(s, "_")
	if !ok || kind == "" {
		return "", ulid.ULID{}, fmt.Errorf("id %q: missing kind prefix", s)
	}
	u, err := ulid.ParseStrict(rest)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("id %q: %w", s, err)
	}
	return Kind(kind), u, nil
}

// CreatedAt reports when a prefixed ID was issued.
func CreatedAt(s string) (time.Time, error) {
	_, u, err := Split(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}
