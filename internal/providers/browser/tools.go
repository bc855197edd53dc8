package browser

import "github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"

var windowParam = types.Parameter{Name: "window_id", Type: "string", Description: "Target window; defaults to the calling window", Required: false}

func (p *Provider) getTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "browser.open",
			Name:        "Open Window",
			Description: "Open a browsing context, optionally nested under a parent, and navigate it",
			Parameters: []types.Parameter{
				{Name: "url", Type: "string", Description: "Initial URL", Required: false},
				{Name: "parent_id", Type: "string", Description: "Open as a child of this window", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.close",
			Name:        "Close Window",
			Description: "Close a window and its nested windows",
			Parameters:  []types.Parameter{windowParam},
			Returns:     "object",
		},
		{
			ID:          "browser.windows",
			Name:        "List Windows",
			Description: "List open windows and navigation latency statistics",
			Parameters:  []types.Parameter{},
			Returns:     "object",
		},
		{
			ID:          "browser.navigate",
			Name:        "Navigate",
			Description: "Navigate a window to a URL resolved against its document base URL",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "url", Type: "string", Description: "Target URL or relative reference", Required: true},
				{Name: "params", Type: "object", Description: "Query parameters appended to the URL", Required: false},
				{Name: "replace", Type: "boolean", Description: "Replace the current history entry", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.replace",
			Name:        "Replace",
			Description: "Navigate without adding a history entry (location.replace)",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "url", Type: "string", Description: "Target URL", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "browser.reload",
			Name:        "Reload",
			Description: "Reload the current document",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "force", Type: "boolean", Description: "Bypass caches", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.back",
			Name:        "Back",
			Description: "Traverse one entry back in session history",
			Parameters:  []types.Parameter{windowParam},
			Returns:     "object",
		},
		{
			ID:          "browser.forward",
			Name:        "Forward",
			Description: "Traverse one entry forward in session history",
			Parameters:  []types.Parameter{windowParam},
			Returns:     "object",
		},
		{
			ID:          "browser.go",
			Name:        "Go",
			Description: "Traverse session history by delta; 0 reloads",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "delta", Type: "number", Description: "Entries to move", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.push_state",
			Name:        "Push State",
			Description: "Add a same-document history entry with serialized state",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "state", Type: "any", Description: "Cloneable state value", Required: false},
				{Name: "title", Type: "string", Description: "Entry title", Required: false},
				{Name: "url", Type: "string", Description: "Same-origin URL for the new entry", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.replace_state",
			Name:        "Replace State",
			Description: "Replace the state, title and URL of the current entry",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "state", Type: "any", Description: "Cloneable state value", Required: false},
				{Name: "title", Type: "string", Description: "Entry title", Required: false},
				{Name: "url", Type: "string", Description: "Same-origin URL for the entry", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.set_location",
			Name:        "Set Location Component",
			Description: "Assign one location component (href, protocol, host, hostname, port, pathname, search, hash)",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "component", Type: "string", Description: "Component name", Required: true},
				{Name: "value", Type: "string", Description: "New value", Required: false},
			},
			Returns: "object",
		},
		{
			ID:          "browser.location",
			Name:        "Get Location",
			Description: "Read every location component of a window",
			Parameters:  []types.Parameter{windowParam},
			Returns:     "object",
		},
		{
			ID:          "browser.history",
			Name:        "Get History",
			Description: "Read session history length, current state and entries",
			Parameters:  []types.Parameter{windowParam},
			Returns:     "object",
		},
		{
			ID:          "browser.execute_script",
			Name:        "Execute Script",
			Description: "Run JavaScript against a window's location, history and document",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "script", Type: "string", Description: "JavaScript source", Required: true},
			},
			Returns: "object",
		},
		{
			ID:          "browser.query",
			Name:        "Query Document",
			Description: "Extract text from the current document by CSS selector or XPath",
			Parameters: []types.Parameter{
				windowParam,
				{Name: "selector", Type: "string", Description: "CSS selector", Required: false},
				{Name: "xpath", Type: "string", Description: "XPath expression", Required: false},
			},
			Returns: "object",
		},
	}
}
