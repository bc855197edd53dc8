package browser

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
)

var (
	// ErrWindowNotFound is returned for unknown or closed window ids.
	ErrWindowNotFound = errors.New("window not found")
	// ErrTooManyWindows is returned when MaxWindows top-level windows are open.
	ErrTooManyWindows = errors.New("too many open windows")
)

// latencySamples bounds the navigation latency window kept for Stats.
const latencySamples = 512

// ManagerConfig configures a WindowManager.
type ManagerConfig struct {
	MaxWindows  int
	InitialURL  string
	IdleTimeout time.Duration
}

// WindowInfo describes an open window.
type WindowInfo struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Length    int       `json:"history_length"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

// LatencyStats summarizes recent navigation latencies in milliseconds.
type LatencyStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_ms"`
	StdDev float64 `json:"stddev_ms"`
	P50    float64 `json:"p50_ms"`
	P95    float64 `json:"p95_ms"`
	Max    float64 `json:"max_ms"`
}

type managedWindow struct {
	win      *navigation.Window
	created  time.Time
	lastUsed time.Time
}

// WindowManager owns every open window, top-level and nested.
type WindowManager struct {
	mu      sync.RWMutex
	windows map[string]*managedWindow
	loader  navigation.Loader
	opts    []navigation.Option
	cfg     ManagerConfig
	logger  *zap.Logger
	metrics *monitoring.Metrics

	latMu   sync.Mutex
	latency []float64
	latNext int
}

// NewWindowManager creates a manager whose windows load through loader.
func NewWindowManager(loader navigation.Loader, cfg ManagerConfig, logger *zap.Logger, metrics *monitoring.Metrics, opts ...navigation.Option) *WindowManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowManager{
		windows: make(map[string]*managedWindow),
		loader:  loader,
		opts:    opts,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Open creates a top-level window and navigates it to rawURL, or to the
// configured initial URL when rawURL is empty. A failed initial navigation
// closes the window again.
func (m *WindowManager) Open(ctx context.Context, rawURL string) (*navigation.Window, error) {
	m.mu.Lock()
	if m.cfg.MaxWindows > 0 && m.topLevelCount() >= m.cfg.MaxWindows {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w (max %d)", ErrTooManyWindows, m.cfg.MaxWindows)
	}
	win := navigation.NewWindow(m.loader, m.opts...)
	m.track(win)
	m.mu.Unlock()

	m.logger.Info("Window opened", logging.Window(win.ID()))

	if rawURL == "" {
		rawURL = m.cfg.InitialURL
	}
	if rawURL != "" && rawURL != "about:blank" {
		if err := m.Navigate(ctx, win, rawURL, false); err != nil {
			m.Close(win.ID())
			return nil, err
		}
	}
	return win, nil
}

// OpenChild creates a nested window under parentID.
func (m *WindowManager) OpenChild(parentID string) (*navigation.Window, error) {
	parent, err := m.Get(parentID)
	if err != nil {
		return nil, err
	}
	child, err := parent.OpenChild()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.track(child)
	m.mu.Unlock()
	return child, nil
}

// track registers win. Caller holds mu.
func (m *WindowManager) track(win *navigation.Window) {
	now := time.Now()
	m.windows[win.ID()] = &managedWindow{win: win, created: now, lastUsed: now}
	m.metrics.SetWindowsActive(len(m.windows))
}

func (m *WindowManager) topLevelCount() int {
	n := 0
	for _, w := range m.windows {
		if w.win.Parent() == nil {
			n++
		}
	}
	return n
}

// Get returns an open window and marks it used.
func (m *WindowManager) Get(id string) (*navigation.Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWindowNotFound, id)
	}
	w.lastUsed = time.Now()
	return w.win, nil
}

// Navigate navigates win and records the latency of full navigations.
func (m *WindowManager) Navigate(ctx context.Context, win *navigation.Window, rawURL string, replace bool) error {
	start := time.Now()
	err := win.Controller().NavigateURL(ctx, rawURL, replace)
	if err == nil {
		m.ObserveLatency(time.Since(start))
	}
	return err
}

// Close closes a window and its descendants.
func (m *WindowManager) Close(id string) error {
	m.mu.Lock()
	w, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWindowNotFound, id)
	}
	m.untrack(w.win)
	m.metrics.SetWindowsActive(len(m.windows))
	m.mu.Unlock()

	w.win.Close()
	m.logger.Info("Window closed", logging.Window(id))
	return nil
}

// untrack removes win and its descendants. Caller holds mu.
func (m *WindowManager) untrack(win *navigation.Window) {
	for _, child := range win.Children() {
		m.untrack(child)
	}
	delete(m.windows, win.ID())
}

// List describes every open window, oldest first.
func (m *WindowManager) List() []WindowInfo {
	m.mu.RLock()
	out := make([]WindowInfo, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, describe(w))
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b WindowInfo) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Info describes one window.
func (m *WindowManager) Info(id string) (WindowInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.windows[id]
	if !ok {
		return WindowInfo{}, fmt.Errorf("%w: %s", ErrWindowNotFound, id)
	}
	return describe(w), nil
}

func describe(w *managedWindow) WindowInfo {
	doc := w.win.Controller().Document()
	info := WindowInfo{
		ID:        w.win.ID(),
		URL:       doc.Href(),
		Title:     doc.Title,
		Length:    w.win.History().Length(),
		CreatedAt: w.created,
		LastUsed:  w.lastUsed,
	}
	if p := w.win.Parent(); p != nil {
		info.ParentID = p.ID()
	}
	return info
}

// Reap closes top-level windows idle since before now-IdleTimeout and
// returns how many it closed.
func (m *WindowManager) Reap(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	m.mu.RLock()
	var idle []string
	for id, w := range m.windows {
		if w.win.Parent() == nil && now.Sub(w.lastUsed) > m.cfg.IdleTimeout {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range idle {
		if err := m.Close(id); err == nil {
			m.logger.Debug("Reaped idle window", logging.Window(id))
		}
	}
	return len(idle)
}

// Run reaps idle windows until ctx is done.
func (m *WindowManager) Run(ctx context.Context) {
	if m.cfg.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(max(m.cfg.IdleTimeout/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Reap(now)
		}
	}
}

// CloseAll closes every window.
func (m *WindowManager) CloseAll() {
	m.mu.RLock()
	var ids []string
	for id, w := range m.windows {
		if w.win.Parent() == nil {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()
	for _, id := range ids {
		m.Close(id)
	}
}

// ObserveLatency records one navigation latency.
func (m *WindowManager) ObserveLatency(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	m.latMu.Lock()
	defer m.latMu.Unlock()
	if len(m.latency) < latencySamples {
		m.latency = append(m.latency, ms)
		return
	}
	m.latency[m.latNext] = ms
	m.latNext = (m.latNext + 1) % latencySamples
}

// Stats summarizes the recent navigation latencies.
func (m *WindowManager) Stats() LatencyStats {
	m.latMu.Lock()
	samples := slices.Clone(m.latency)
	m.latMu.Unlock()
	if len(samples) == 0 {
		return LatencyStats{}
	}
	slices.Sort(samples)
	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) == 1 {
		std = 0
	}
	return LatencyStats{
		Count:  len(samples),
		Mean:   mean,
		StdDev: std,
		P50:    stat.Quantile(0.5, stat.Empirical, samples, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, samples, nil),
		Max:    samples[len(samples)-1],
	}
}
