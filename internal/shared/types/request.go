package types

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID   string         `json:"tool_id" binding:"required"`
	Params   map[string]any `json:"params"`
	WindowID *string        `json:"window_id,omitempty"`
}

// OpenWindowRequest opens a top-level window, optionally navigating it.
type OpenWindowRequest struct {
	URL      string `json:"url"`
	ParentID string `json:"parent_id,omitempty"`
}

// NavigateRequest navigates a window.
type NavigateRequest struct {
	URL     string `json:"url" binding:"required"`
	Replace bool   `json:"replace"`
}

// TraverseRequest moves through session history.
type TraverseRequest struct {
	Delta int `json:"delta"`
}

// StateRequest is a pushState / replaceState call. A nil URL keeps the
// current URL.
type StateRequest struct {
	State   any     `json:"state"`
	Title   string  `json:"title"`
	URL     *string `json:"url,omitempty"`
	Replace bool    `json:"replace"`
}

// ScriptRequest runs a script against a window.
type ScriptRequest struct {
	Script string `json:"script" binding:"required"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type     string `json:"type"`
	WindowID string `json:"window_id,omitempty"`
	Message  string `json:"message,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// DiscoverRequest finds services relevant to a free-text query.
type DiscoverRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}
