package browser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/fetch"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/sandbox"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
)

// Provider implements the browser service: windows, navigation, session
// history and sandboxed scripts.
type Provider struct {
	windows *WindowManager
	pool    *sandbox.Pool
	fetcher *fetch.Fetcher
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates a browser provider over an existing window manager and pool.
func New(windows *WindowManager, pool *sandbox.Pool, logger *zap.Logger, metrics *monitoring.Metrics) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		windows: windows,
		pool:    pool,
		logger:  logger,
		metrics: metrics,
	}
}

// NewFromConfig wires the fetcher, navigation policy, window manager and
// sandbox pool from application configuration. opts are appended to the
// navigation options every window is created with.
func NewFromConfig(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics, opts ...navigation.Option) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy, err := navigation.NewPolicy(cfg.Browser.BlockedPatterns...)
	if err != nil {
		return nil, fmt.Errorf("browser policy: %w", err)
	}

	fetcher := fetch.New(fetch.FromConfig(cfg),
		fetch.WithLogger(logger.Named("fetch")),
		fetch.WithMetrics(metrics),
	)

	navOpts := append([]navigation.Option{
		navigation.WithLogger(logger.Named("navigation")),
		navigation.WithMetrics(metrics),
		navigation.WithPolicy(policy),
		navigation.WithMaxEntries(cfg.Browser.MaxHistoryEntries),
		navigation.WithReloadKeepsFragmentOnNoStore(cfg.Browser.ReloadKeepsFragmentOnNoStore),
	}, opts...)

	windows := NewWindowManager(fetcher, ManagerConfig{
		MaxWindows:  cfg.Browser.MaxWindows,
		InitialURL:  cfg.Browser.InitialURL,
		IdleTimeout: cfg.Browser.IdleTimeout.Std(),
	}, logger.Named("windows"), metrics, navOpts...)

	pool, err := sandbox.NewPool(sandbox.FromConfig(cfg), cfg.Sandbox.PoolSize, logger.Named("sandbox"))
	if err != nil {
		return nil, fmt.Errorf("sandbox pool: %w", err)
	}

	p := New(windows, pool, logger, metrics)
	p.fetcher = fetcher
	return p, nil
}

// Windows returns the window manager.
func (p *Provider) Windows() *WindowManager { return p.windows }

// Pool returns the sandbox pool.
func (p *Provider) Pool() *sandbox.Pool { return p.pool }

// Breakers reports the per-origin circuit breaker states of the fetcher.
func (p *Provider) Breakers() map[string]string {
	if p.fetcher == nil {
		return map[string]string{}
	}
	return p.fetcher.Client().BreakerStates()
}

// Close closes every window and the sandbox pool.
func (p *Provider) Close() error {
	p.windows.CloseAll()
	if p.pool != nil {
		return p.pool.Close()
	}
	return nil
}

// Definition returns service definition
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "browser",
		Name:        "Browser",
		Category:    types.CategoryBrowser,
		Description: "Headless browsing contexts with session history, location and scripting",
		Capabilities: []string{
			"windows",
			"navigation",
			"session_history",
			"history_state",
			"location",
			"scripting",
		},
		Tools: p.getTools(),
		DataModels: []types.DataModel{
			{
				Name: "Window",
				Fields: map[string]string{
					"window_id":      "string",
					"url":            "string",
					"title":          "string",
					"history_length": "number",
					"cursor":         "number",
				},
			},
			{
				Name: "HistoryEntry",
				Fields: map[string]string{
					"key":   "string",
					"url":   "string",
					"title": "string",
				},
			},
		},
	}
}

// Execute routes tool calls
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	done := p.metrics.TrackCall("browser", toolID)
	res, err := p.execute(ctx, toolID, params, appCtx)
	done(monitoring.Outcome(res != nil && res.Success, err))
	return res, err
}

func (p *Provider) execute(ctx context.Context, toolID string, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "browser.open":
		return p.Open(ctx, params)
	case "browser.close":
		return p.CloseWindow(params, appCtx)
	case "browser.windows":
		return p.ListWindows()
	case "browser.navigate":
		return p.Navigate(ctx, params, appCtx)
	case "browser.replace":
		return p.Replace(ctx, params, appCtx)
	case "browser.reload":
		return p.Reload(ctx, params, appCtx)
	case "browser.back":
		return p.Traverse(ctx, params, appCtx, -1)
	case "browser.forward":
		return p.Traverse(ctx, params, appCtx, 1)
	case "browser.go":
		delta, err := types.GetInt(params, "delta", 0)
		if err != nil {
			return types.Failure(err.Error())
		}
		return p.Traverse(ctx, params, appCtx, delta)
	case "browser.push_state":
		return p.UpdateState(params, appCtx, false)
	case "browser.replace_state":
		return p.UpdateState(params, appCtx, true)
	case "browser.set_location":
		return p.SetLocation(ctx, params, appCtx)
	case "browser.location":
		return p.GetLocation(params, appCtx)
	case "browser.history":
		return p.GetHistory(params, appCtx)
	case "browser.execute_script":
		return p.ExecuteScript(ctx, params, appCtx)
	case "browser.query":
		return p.Query(params, appCtx)
	default:
		return types.Failuref("unknown tool: %s", toolID)
	}
}

// window resolves the target window from params["window_id"], falling back
// to the calling context.
func (p *Provider) window(params map[string]any, appCtx *types.Context) (*navigation.Window, error) {
	windowID, err := types.GetString(params, "window_id", false)
	if err != nil {
		return nil, err
	}
	if windowID == "" {
		windowID = appCtx.Window()
	}
	if windowID == "" {
		return nil, fmt.Errorf("window_id parameter required")
	}
	return p.windows.Get(windowID)
}

// windowState summarizes a window after an operation.
func windowState(win *navigation.Window) map[string]any {
	doc := win.Controller().Document()
	entries, cursor := win.Top().Controller().Entries()
	return map[string]any{
		"window_id":      win.ID(),
		"url":            doc.Href(),
		"title":          doc.Title,
		"status":         doc.Status,
		"content_type":   doc.ContentType,
		"history_length": len(entries),
		"cursor":         cursor,
		"can_go_back":    cursor > 0,
		"can_go_forward": cursor < len(entries)-1,
		"loaded_at":      doc.LoadedAt.Format(time.RFC3339Nano),
	}
}
