package browser

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/document"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/sandbox"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
)

// ExecuteScript runs a script with window, location, history and document
// bound to the target window.
func (p *Provider) ExecuteScript(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	script, err := types.GetString(params, "script", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}

	result, err := p.pool.Execute(ctx, script, win)
	if err != nil {
		status := "error"
		if errors.Is(err, sandbox.ErrScriptTimeout) {
			status = "timeout"
		}
		p.metrics.RecordScript(status)
		p.logger.Debug("Script failed", logging.Window(win.ID()), zap.Error(err))
		return types.Failuref("execution failed: %v", err)
	}
	p.metrics.RecordScript("success")

	data := windowState(win)
	data["value"] = result.Value
	data["console"] = result.Console
	data["dom_changes"] = result.DOMChanges
	data["events"] = result.Events
	data["duration_ms"] = result.Duration.Milliseconds()
	return types.Success(data)
}

// Query extracts text from the active document.
func (p *Provider) Query(params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	selector, err := types.GetString(params, "selector", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	xpath, err := types.GetString(params, "xpath", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	html := win.Controller().Document().HTML
	var matches []string
	switch {
	case selector != "":
		matches, err = document.Select(html, selector)
	case xpath != "":
		matches, err = document.XPath(html, xpath)
	default:
		return types.Failure("selector or xpath parameter required")
	}
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]any{
		"window_id": win.ID(),
		"url":       win.Controller().Document().Href(),
		"matches":   matches,
		"count":     len(matches),
	})
}
