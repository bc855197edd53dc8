package types

// Category groups services in listings.
type Category string

const (
	CategoryBrowser Category = "browser"
	CategoryURL     Category = "url"
)

// Service is the self-description a provider registers with.
type Service struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Category     Category    `json:"category"`
	Capabilities []string    `json:"capabilities"`
	Tools        []Tool      `json:"tools"`
	DataModels   []DataModel `json:"data_models,omitempty"`
}

// ToolIDs lists the ids of the declared tools in declaration order.
func (s Service) ToolIDs() []string {
	ids := make([]string, len(s.Tools))
	for i, t := range s.Tools {
		ids[i] = t.ID
	}
	return ids
}

// Tool ids take the form "<service>.<name>".
type Tool struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Returns     string      `json:"returns"`
}

// Parameter documents one entry of a tool's params object. Type is a JSON
// type name ("string", "number", "boolean", "object", "any").
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// DataModel documents the shape of a value a tool returns.
type DataModel struct {
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields"`
}

// Context carries per-call request metadata into a provider.
type Context struct {
	WindowID  *string `json:"window_id,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	ClientIP  string  `json:"client_ip,omitempty"`
}

// Window returns the window id, or "".
func (c *Context) Window() string {
	if c == nil || c.WindowID == nil {
		return ""
	}
	return *c.WindowID
}

// Result is what every tool returns. Error is set exactly when Success is false.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *string        `json:"error,omitempty"`
}
