package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
)

var (
	// ErrInvalidToolID is returned for tool ids without a service prefix.
	ErrInvalidToolID = errors.New("invalid tool ID format")
	// ErrServiceNotFound is returned when no provider owns the tool's service.
	ErrServiceNotFound = errors.New("service not found")
	// ErrToolNotFound is returned when the service exists but does not declare the tool.
	ErrToolNotFound = errors.New("tool not found")
	// ErrDuplicateService is returned when a service id is registered twice.
	ErrDuplicateService = errors.New("service already registered")
)

// Provider is implemented by every tool family the server exposes.
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]any, appCtx *types.Context) (*types.Result, error)
}

// entry pairs a provider with the definition captured at registration.
type entry struct {
	provider Provider
	def      types.Service
	tools    map[string]struct{}
}

// Registry routes tool calls to providers keyed by service id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a provider. Service ids are unique.
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}

	e := &entry{provider: provider, def: def, tools: make(map[string]struct{}, len(def.Tools))}
	for _, id := range def.ToolIDs() {
		e.tools[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateService, def.ID)
	}
	r.entries[def.ID] = e
	return nil
}

// Unregister drops a provider; unknown ids are ignored.
func (r *Registry) Unregister(serviceID string) {
	r.mu.Lock()
	delete(r.entries, serviceID)
	r.mu.Unlock()
}

// Get returns the provider registered under serviceID.
func (r *Registry) Get(serviceID string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[serviceID]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// snapshot copies the entries ordered by service id.
func (r *Registry) snapshot() []*entry {
	r.mu.RLock()
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].def.ID < out[j].def.ID })
	return out
}

// List returns service definitions ordered by id, optionally limited to one category.
func (r *Registry) List(category *types.Category) []types.Service {
	services := []types.Service{}
	for _, e := range r.snapshot() {
		if category != nil && e.def.Category != *category {
			continue
		}
		services = append(services, e.def)
	}
	return services
}

// Discover ranks services against a free-text intent and returns at most limit of them.
// Services that share no terms with the intent are omitted.
func (r *Registry) Discover(intent string, limit int) []types.Service {
	terms := termSet(intent)
	phrase := " " + strings.Join(tokenize(intent), " ") + " "

	type match struct {
		def   types.Service
		score int
	}
	var matches []match
	for _, e := range r.snapshot() {
		if s := relevance(terms, phrase, e.def); s > 0 {
			matches = append(matches, match{def: e.def, score: s})
		}
	}
	// snapshot order already breaks ties by id
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if limit < 0 {
		limit = 0
	}
	out := make([]types.Service, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.def)
	}
	return out
}

// Execute dispatches toolID to the provider that owns its "service." prefix.
// Lookup failures are returned both as an error and as a failed result.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	serviceID, _, ok := strings.Cut(toolID, ".")
	if !ok || serviceID == "" {
		res, _ := types.Failure("invalid tool ID format")
		return res, fmt.Errorf("%w: %s", ErrInvalidToolID, toolID)
	}

	r.mu.RLock()
	e, ok := r.entries[serviceID]
	r.mu.RUnlock()
	if !ok {
		res, _ := types.Failuref("service not found: %s", serviceID)
		return res, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	if _, declared := e.tools[toolID]; !declared {
		res, _ := types.Failuref("tool not found: %s", toolID)
		return res, fmt.Errorf("%w: %s", ErrToolNotFound, toolID)
	}

	if params == nil {
		params = map[string]any{}
	}
	if appCtx == nil {
		appCtx = &types.Context{}
	}
	return e.provider.Execute(ctx, toolID, params, appCtx)
}

// Stats summarizes the registered services.
func (r *Registry) Stats() map[string]any {
	var tools int
	categories := make(map[string]int)
	entries := r.snapshot()
	for _, e := range entries {
		tools += len(e.def.Tools)
		categories[string(e.def.Category)]++
	}
	return map[string]any{
		"total_services": len(entries),
		"total_tools":    tools,
		"categories":     categories,
	}
}

// relevance weights id and name hits highest, then description words,
// capabilities, tool names, and finally the category.
func relevance(terms map[string]struct{}, phrase string, def types.Service) int {
	score := 0
	if containsPhrase(phrase, def.ID) || containsPhrase(phrase, def.Name) {
		score += 10
	}
	for _, w := range tokenize(def.Description) {
		if _, ok := terms[w]; ok && len(w) > 2 {
			score += 5
		}
	}
	for _, c := range def.Capabilities {
		if containsPhrase(phrase, c) {
			score += 3
		}
	}
	for _, id := range def.ToolIDs() {
		_, name, _ := strings.Cut(id, ".")
		if containsPhrase(phrase, name) {
			score++
		}
	}
	if _, ok := terms[strings.ToLower(string(def.Category))]; ok {
		score += 2
	}
	return score
}

// containsPhrase reports whether the words of s appear consecutively in phrase.
func containsPhrase(phrase, s string) bool {
	words := tokenize(s)
	if len(words) == 0 {
		return false
	}
	return strings.Contains(phrase, " "+strings.Join(words, " ")+" ")
}

// tokenize lowercases s and splits it on anything that is not a letter or digit,
// so "history_traversal" and "history traversal" compare equal.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func termSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(s) {
		set[w] = struct{}{}
	}
	return set
}
