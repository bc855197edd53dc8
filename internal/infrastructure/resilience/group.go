package resilience

import "sync"

// Group hands out one breaker per key, all sharing the same settings. The
// fetcher keys it by origin so one failing site does not trip the others.
type Group struct {
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty group.
func NewGroup(s Settings) *Group {
	return &Group{settings: s, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for key, creating it on first use.
func (g *Group) Get(key string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.breakers[key]
	if !ok {
		b = New(key, g.settings)
		g.breakers[key] = b
	}
	return b
}

// States reports the state of every breaker created so far.
func (g *Group) States() map[string]State {
	g.mu.Lock()
	bs := make([]*Breaker, 0, len(g.breakers))
	for _, b := range g.breakers {
		bs = append(bs, b)
	}
	g.mu.Unlock()

	out := make(map[string]State, len(bs))
	for _, b := range bs {
		out[b.Name()] = b.State()
	}
	return out
}
