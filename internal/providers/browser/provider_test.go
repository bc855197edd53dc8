package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/sandbox"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
)

var ctx = context.Background()

func testLoader() navigation.Loader {
	return navigation.LoaderFunc(func(_ context.Context, req *navigation.Request) (*navigation.Response, error) {
		path := req.URL.Pathname()
		if path == "/fail" {
			return nil, errors.New("connection refused")
		}
		return &navigation.Response{
			URL:         req.URL.Href(),
			Status:      http.StatusOK,
			ContentType: "text/html",
			Title:       "Page " + path,
			HTML: fmt.Sprintf(`<html><head><title>Page %s</title></head>
<body><h1>%s</h1><p class="x">one</p><p class="x">two</p></body></html>`, path, path),
		}, nil
	})
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	windows := NewWindowManager(testLoader(), ManagerConfig{InitialURL: "about:blank"}, zap.NewNop(), nil)
	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 1, zap.NewNop())
	require.NoError(t, err)
	p := New(windows, pool, nil, nil)
	t.Cleanup(func() { p.Close() })
	return p
}

func call(t *testing.T, p *Provider, tool string, params map[string]any) map[string]any {
	t.Helper()
	res, err := p.Execute(ctx, tool, params, nil)
	require.NoError(t, err)
	require.True(t, res.Success, "%s failed: %v", tool, errorText(res))
	return res.Data
}

func callFails(t *testing.T, p *Provider, tool string, params map[string]any) string {
	t.Helper()
	res, err := p.Execute(ctx, tool, params, nil)
	require.NoError(t, err)
	require.False(t, res.Success, "%s unexpectedly succeeded", tool)
	return errorText(res)
}

func errorText(res *types.Result) string {
	if res.Error == nil {
		return ""
	}
	return *res.Error
}

func openAt(t *testing.T, p *Provider, url string) string {
	t.Helper()
	data := call(t, p, "browser.open", map[string]any{"url": url})
	return data["window_id"].(string)
}

func TestDefinition(t *testing.T) {
	def := newTestProvider(t).Definition()
	assert.Equal(t, "browser", def.ID)
	assert.Equal(t, types.CategoryBrowser, def.Category)

	ids := make(map[string]bool)
	for _, tool := range def.Tools {
		ids[tool.ID] = true
	}
	for _, want := range []string{"browser.open", "browser.navigate", "browser.back", "browser.push_state", "browser.execute_script"} {
		assert.True(t, ids[want], want)
	}
}

func TestOpenAndNavigate(t *testing.T) {
	p := newTestProvider(t)
	data := call(t, p, "browser.open", map[string]any{"url": "https://example.com/start"})
	assert.Equal(t, "https://example.com/start", data["url"])
	assert.Equal(t, "Page /start", data["title"])
	assert.Equal(t, 1, data["history_length"])
	id := data["window_id"].(string)

	data = call(t, p, "browser.navigate", map[string]any{
		"window_id": id,
		"url":       "next",
		"params":    map[string]any{"q": "go lang", "a": 1},
	})
	assert.Equal(t, "https://example.com/next?a=1&q=go+lang", data["url"])
	assert.Equal(t, 2, data["history_length"])
	assert.Equal(t, 1, data["cursor"])
	assert.Equal(t, true, data["can_go_back"])
	assert.Equal(t, false, data["can_go_forward"])
}

func TestOpenFailureClosesWindow(t *testing.T) {
	p := newTestProvider(t)
	msg := callFails(t, p, "browser.open", map[string]any{"url": "https://example.com/fail"})
	assert.Contains(t, msg, "connection refused")
	assert.Empty(t, p.Windows().List())
}

func TestWindowFromContext(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/start")

	res, err := p.Execute(ctx, "browser.location", nil, &types.Context{WindowID: &id})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "/start", res.Data["pathname"])

	assert.Contains(t, callFails(t, p, "browser.location", nil), "window_id parameter required")
	assert.Contains(t, callFails(t, p, "browser.location", map[string]any{"window_id": "win_missing"}), "window not found")
}

func TestTraversal(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/a")
	call(t, p, "browser.navigate", map[string]any{"window_id": id, "url": "/b"})
	call(t, p, "browser.navigate", map[string]any{"window_id": id, "url": "/c"})

	data := call(t, p, "browser.back", map[string]any{"window_id": id})
	assert.Equal(t, "https://example.com/b", data["url"])
	assert.Equal(t, true, data["can_go_forward"])

	data = call(t, p, "browser.go", map[string]any{"window_id": id, "delta": float64(-1)})
	assert.Equal(t, "https://example.com/a", data["url"])
	assert.Equal(t, 0, data["cursor"])

	data = call(t, p, "browser.forward", map[string]any{"window_id": id})
	assert.Equal(t, "https://example.com/b", data["url"])

	// out of range is a no-op
	data = call(t, p, "browser.go", map[string]any{"window_id": id, "delta": float64(10)})
	assert.Equal(t, "https://example.com/b", data["url"])

	callFails(t, p, "browser.go", map[string]any{"window_id": id, "delta": 1.5})
}

func TestReplaceAndReload(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/a")

	data := call(t, p, "browser.replace", map[string]any{"window_id": id, "url": "/b"})
	assert.Equal(t, "https://example.com/b", data["url"])
	assert.Equal(t, 1, data["history_length"])

	data = call(t, p, "browser.reload", map[string]any{"window_id": id, "force": true})
	assert.Equal(t, "https://example.com/b", data["url"])
	assert.Equal(t, 1, data["history_length"])
}

func TestPushStateAndHistory(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/start")

	data := call(t, p, "browser.push_state", map[string]any{
		"window_id": id,
		"state":     "hello",
		"title":     "step",
		"url":       "?p=1",
	})
	assert.Equal(t, "https://example.com/start?p=1", data["url"])

	hist := call(t, p, "browser.history", map[string]any{"window_id": id})
	assert.Equal(t, 2, hist["length"])
	assert.Equal(t, "hello", hist["state"])
	assert.Equal(t, "auto", hist["scroll_restoration"])
	entries := hist["entries"].([]map[string]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://example.com/start?p=1", entries[1]["url"])
	assert.Equal(t, "step", entries[1]["title"])
	assert.Equal(t, id, entries[1]["window_id"])

	call(t, p, "browser.replace_state", map[string]any{"window_id": id, "state": "bye"})
	hist = call(t, p, "browser.history", map[string]any{"window_id": id})
	assert.Equal(t, 2, hist["length"])
	assert.Equal(t, "bye", hist["state"])
}

func TestPushStateRejectsCrossOrigin(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/start")

	msg := callFails(t, p, "browser.push_state", map[string]any{
		"window_id": id,
		"state":     nil,
		"url":       "https://other.example/",
	})
	assert.Contains(t, msg, "SecurityError")
	callFails(t, p, "browser.push_state", map[string]any{"window_id": id, "url": 42})
}

func TestSetLocation(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/start")

	data := call(t, p, "browser.set_location", map[string]any{"window_id": id, "component": "hash", "value": "sec"})
	assert.Equal(t, "https://example.com/start#sec", data["url"])
	assert.Equal(t, 2, data["history_length"])

	loc := call(t, p, "browser.location", map[string]any{"window_id": id})
	assert.Equal(t, "#sec", loc["hash"])
	assert.Equal(t, "https://example.com", loc["origin"])

	data = call(t, p, "browser.set_location", map[string]any{"window_id": id, "component": "pathname", "value": "/other"})
	assert.Equal(t, "https://example.com/other", data["url"])

	assert.Contains(t, callFails(t, p, "browser.set_location", map[string]any{"window_id": id, "component": "fragment"}), "unknown location component")
}

func TestQuery(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/start")

	data := call(t, p, "browser.query", map[string]any{"window_id": id, "selector": "p.x"})
	assert.Equal(t, []string{"one", "two"}, data["matches"])
	assert.Equal(t, 2, data["count"])

	data = call(t, p, "browser.query", map[string]any{"window_id": id, "xpath": "//h1"})
	assert.Equal(t, []string{"/start"}, data["matches"])

	callFails(t, p, "browser.query", map[string]any{"window_id": id})
}

func TestExecuteScript(t *testing.T) {
	p := newTestProvider(t)
	id := openAt(t, p, "https://example.com/start")

	data := call(t, p, "browser.execute_script", map[string]any{
		"window_id": id,
		"script":    "location.hash = 'x'; location.pathname",
	})
	assert.Equal(t, "/start", data["value"])
	assert.Equal(t, "https://example.com/start#x", data["url"])
	events := data["events"].([]navigation.Event)
	require.Len(t, events, 1)
	assert.Equal(t, navigation.EventHashChange, events[0].Type)

	assert.Contains(t, callFails(t, p, "browser.execute_script", map[string]any{"window_id": id, "script": "throw new Error('boom')"}), "boom")
}

func TestChildWindowsCloseWithParent(t *testing.T) {
	p := newTestProvider(t)
	parent := openAt(t, p, "https://example.com/start")

	data := call(t, p, "browser.open", map[string]any{"parent_id": parent, "url": "https://example.com/frame"})
	assert.Equal(t, parent, data["parent_id"])
	child := data["window_id"].(string)

	list := call(t, p, "browser.windows", nil)["windows"].([]WindowInfo)
	assert.Len(t, list, 2)

	call(t, p, "browser.close", map[string]any{"window_id": parent})
	assert.Empty(t, p.Windows().List())
	callFails(t, p, "browser.location", map[string]any{"window_id": child})
}

func TestUnknownTool(t *testing.T) {
	p := newTestProvider(t)
	assert.Contains(t, callFails(t, p, "browser.teleport", nil), "unknown tool")
}
