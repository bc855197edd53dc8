package browser

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
)

// Open opens a top-level window, or a nested one when parent_id is set.
func (p *Provider) Open(ctx context.Context, params map[string]any) (*types.Result, error) {
	rawURL, err := types.GetString(params, "url", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	parentID, err := types.GetString(params, "parent_id", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	if parentID == "" {
		win, err := p.windows.Open(ctx, rawURL)
		if err != nil {
			return types.Failuref("open failed: %v", err)
		}
		return types.Success(windowState(win))
	}

	child, err := p.windows.OpenChild(parentID)
	if err != nil {
		return types.Failure(err.Error())
	}
	if rawURL != "" {
		if err := p.windows.Navigate(ctx, child, rawURL, false); err != nil {
			p.windows.Close(child.ID())
			return types.Failuref("open failed: %v", err)
		}
	}
	state := windowState(child)
	state["parent_id"] = parentID
	return types.Success(state)
}

// CloseWindow closes a window and its descendants.
func (p *Provider) CloseWindow(params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := p.windows.Close(win.ID()); err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]any{"window_id": win.ID(), "closed": true})
}

// ListWindows describes open windows.
func (p *Provider) ListWindows() (*types.Result, error) {
	return types.Success(map[string]any{
		"windows": p.windows.List(),
		"latency": p.windows.Stats(),
	})
}

// Navigate navigates a window, appending any extra query parameters to the
// resolved URL.
func (p *Provider) Navigate(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	rawURL, err := types.GetString(params, "url", true)
	if err != nil {
		return types.Failure(err.Error())
	}

	if extra := types.GetMap(params, "params"); len(extra) > 0 {
		rec, err := win.Controller().Resolve(rawURL)
		if err != nil {
			return types.Failuref("navigation failed: %v", err)
		}
		values := make(map[string]string, len(extra))
		for k, v := range extra {
			values[k] = fmt.Sprint(v)
		}
		u := weburl.FromRecord(rec)
		query := u.SearchParams()
		for _, pair := range weburl.NewSearchParamsFromMap(values).Pairs() {
			query.Append(pair.Name, pair.Value)
		}
		rawURL = u.Href()
	}

	replace := types.GetBool(params, "replace", false)
	if err := p.windows.Navigate(ctx, win, rawURL, replace); err != nil {
		p.logger.Debug("Navigation failed",
			logging.Window(win.ID()),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return types.Failuref("navigation failed: %v", err)
	}
	return types.Success(windowState(win))
}

// Replace navigates with history handling "replace".
func (p *Provider) Replace(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	rawURL, err := types.GetString(params, "url", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := win.Location().Replace(ctx, rawURL); err != nil {
		return types.Failuref("navigation failed: %v", err)
	}
	return types.Success(windowState(win))
}

// Reload reloads the active document.
func (p *Provider) Reload(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := win.Location().Reload(ctx, types.GetBool(params, "force", false)); err != nil {
		return types.Failuref("reload failed: %v", err)
	}
	return types.Success(windowState(win))
}

// Traverse moves through the joint session history by delta.
func (p *Provider) Traverse(ctx context.Context, params map[string]any, appCtx *types.Context, delta int) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	if err := win.History().Go(ctx, delta); err != nil {
		return types.Failuref("traversal failed: %v", err)
	}
	return types.Success(windowState(win))
}

// UpdateState implements pushState and replaceState.
func (p *Provider) UpdateState(params map[string]any, appCtx *types.Context, replace bool) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	title, err := types.GetString(params, "title", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	var url []string
	if raw, ok := params["url"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return types.Failure("url must be string")
		}
		url = append(url, s)
	}

	h := win.History()
	if replace {
		err = h.ReplaceState(params["state"], title, url...)
	} else {
		err = h.PushState(params["state"], title, url...)
	}
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(windowState(win))
}

// SetLocation assigns one location component, navigating when it changes.
func (p *Provider) SetLocation(ctx context.Context, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	component, err := types.GetString(params, "component", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	value, err := types.GetString(params, "value", false)
	if err != nil {
		return types.Failure(err.Error())
	}

	loc := win.Location()
	switch strings.ToLower(component) {
	case "href":
		err = loc.SetHref(ctx, value)
	case "protocol":
		err = loc.SetProtocol(ctx, value)
	case "host":
		err = loc.SetHost(ctx, value)
	case "hostname":
		err = loc.SetHostname(ctx, value)
	case "port":
		err = loc.SetPort(ctx, value)
	case "pathname":
		err = loc.SetPathname(ctx, value)
	case "search":
		err = loc.SetSearch(ctx, value)
	case "hash":
		err = loc.SetHash(ctx, value)
	default:
		return types.Failuref("unknown location component: %s", component)
	}
	if err != nil {
		return types.Failuref("navigation failed: %v", err)
	}
	return types.Success(windowState(win))
}

// GetLocation reports every location component.
func (p *Provider) GetLocation(params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	loc := win.Location()
	return types.Success(map[string]any{
		"window_id": win.ID(),
		"href":      loc.Href(),
		"origin":    loc.Origin(),
		"protocol":  loc.Protocol(),
		"host":      loc.Host(),
		"hostname":  loc.Hostname(),
		"port":      loc.Port(),
		"pathname":  loc.Pathname(),
		"search":    loc.Search(),
		"hash":      loc.Hash(),
	})
}

// GetHistory reports the session history seen by a window.
func (p *Provider) GetHistory(params map[string]any, appCtx *types.Context) (*types.Result, error) {
	win, err := p.window(params, appCtx)
	if err != nil {
		return types.Failure(err.Error())
	}
	h := win.History()
	state, err := h.State()
	if err != nil {
		return types.Failure(err.Error())
	}

	entries, cursor := win.Top().Controller().Entries()
	list := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			"key":       e.Key,
			"url":       e.URL.Href(),
			"title":     e.Title,
			"window_id": e.ContextID,
		})
	}
	return types.Success(map[string]any{
		"window_id":          win.ID(),
		"length":             h.Length(),
		"state":              state,
		"scroll_restoration": h.ScrollRestoration(),
		"cursor":             cursor,
		"entries":            list,
	})
}
