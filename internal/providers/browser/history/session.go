package history

import (
	"errors"
	"sync"
)

// ErrClosed is returned once the owning context has been discarded.
var ErrClosed = errors.New("session history closed")

// DefaultMaxEntries is the cap used when none is configured. Zero leaves
// the session unbounded.
const DefaultMaxEntries = 0

// Option configures a Session.
type Option func(*Session)

// WithMaxEntries caps the number of entries. The oldest entries are
// evicted on push once the cap is reached; 0 means unlimited.
func WithMaxEntries(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// Session is the joint session history.
type Session struct {
	mu         sync.RWMutex
	entries    []Entry
	cursor     int
	maxEntries int
	closed     bool
}

// New creates a session holding initial as its only entry.
func New(initial Entry, opts ...Option) *Session {
	s := &Session{
		entries:    []Entry{initial.Clone()},
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Cursor returns the index of the current entry.
func (s *Session) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// Current returns a copy of the current entry.
func (s *Session) Current() Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[s.cursor].Clone()
}

// At returns a copy of the entry at index.
func (s *Session) At(index int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[index].Clone(), true
}

// Entries returns a copy of every entry.
func (s *Session) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// IndexOf finds an entry by key.
func (s *Session) IndexOf(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, e := range s.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Push discards every entry after the cursor, appends e and moves the
// cursor onto it.
func (s *Session) Push(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries = append(s.entries[:s.cursor+1], e.Clone())
	if over := len(s.entries) - s.maxEntries; s.maxEntries > 0 && over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	s.cursor = len(s.entries) - 1
	return nil
}

// Replace overwrites the current entry.
func (s *Session) Replace(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries[s.cursor] = e.Clone()
	return nil
}

// ReplaceAt overwrites the entry at index without moving the cursor.
func (s *Session) ReplaceAt(index int, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(s.entries) {
		return errors.New("session history index out of range")
	}
	s.entries[index] = e.Clone()
	return nil
}

// LastFor returns the newest entry at or before index that belongs to
// contextID. That is the entry the context shows while the cursor is at index.
func (s *Session) LastFor(contextID string, index int) (int, Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index >= len(s.entries) {
		index = len(s.entries) - 1
	}
	for i := index; i >= 0; i-- {
		if s.entries[i].ContextID == contextID {
			return i, s.entries[i].Clone(), true
		}
	}
	return -1, Entry{}, false
}

// CurrentFor is LastFor at the cursor.
func (s *Session) CurrentFor(contextID string) (int, Entry, bool) {
	s.mu.RLock()
	cursor := s.cursor
	s.mu.RUnlock()
	return s.LastFor(contextID, cursor)
}

// RemoveContext drops every entry of a discarded context. The cursor keeps
// pointing at the same surviving entry, or the nearest one before it.
func (s *Session) RemoveContext(contextID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	kept := s.entries[:0]
	cursor := -1
	for i, e := range s.entries {
		if e.ContextID == contextID {
			continue
		}
		kept = append(kept, e)
		if i <= s.cursor {
			cursor = len(kept) - 1
		}
	}
	removed := len(s.entries) - len(kept)
	if len(kept) == 0 {
		// the top context's entries are never removed this way
		return 0
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = Entry{}
	}
	s.entries = kept
	s.cursor = max(cursor, 0)
	return removed
}

// Update applies fn to the entry at index in place.
func (s *Session) Update(index int, fn func(*Entry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || index < 0 || index >= len(s.entries) {
		return false
	}
	fn(&s.entries[index])
	return true
}

// Target resolves cursor+delta, reporting false when it falls outside the list.
func (s *Session) Target(delta int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.cursor + delta
	if s.closed || i < 0 || i >= len(s.entries) {
		return 0, false
	}
	return i, true
}

// Traverse moves the cursor by delta. Out-of-range targets leave the
// cursor where it is and report false.
func (s *Session) Traverse(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cursor + delta
	if s.closed || i < 0 || i >= len(s.entries) {
		return false
	}
	s.cursor = i
	return true
}

// SetCursor moves the cursor to index.
func (s *Session) SetCursor(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || index < 0 || index >= len(s.entries) {
		return false
	}
	s.cursor = index
	return true
}

// Close discards the session. Reads keep returning the last entries.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
