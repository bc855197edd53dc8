// Package urltools exposes URL parsing, resolution and query handling as
// registry tools. The same descriptions back the urlctl command.
package urltools

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
)

// Provider implements the url service.
type Provider struct{}

// New creates the url provider.
func New() *Provider {
	return &Provider{}
}

// Definition returns service definition
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:           "url",
		Name:         "URL Tools",
		Category:     types.CategoryURL,
		Description:  "Parse, resolve and serialize URLs and query strings",
		Capabilities: []string{"parse", "resolve", "query_params"},
		Tools: []types.Tool{
			{
				ID:          "url.parse",
				Name:        "Parse URL",
				Description: "Parse a URL, optionally against a base, into its components",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "URL or relative reference", Required: true},
					{Name: "base", Type: "string", Description: "Base URL", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "url.resolve",
				Name:        "Resolve Reference",
				Description: "Resolve a relative reference against a base URL",
				Parameters: []types.Parameter{
					{Name: "base", Type: "string", Description: "Base URL", Required: true},
					{Name: "ref", Type: "string", Description: "Reference to resolve", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "url.params",
				Name:        "Parse Query",
				Description: "Parse an application/x-www-form-urlencoded query into ordered pairs",
				Parameters: []types.Parameter{
					{Name: "query", Type: "string", Description: "Query string, leading ? optional", Required: true},
					{Name: "sort", Type: "boolean", Description: "Sort pairs by name", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "url.can_parse",
				Name:        "Can Parse",
				Description: "Report whether a URL parses",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "URL or relative reference", Required: true},
					{Name: "base", Type: "string", Description: "Base URL", Required: false},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute routes tool calls
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "url.parse":
		return p.parse(params)
	case "url.resolve":
		return p.resolve(params)
	case "url.params":
		return p.params(params)
	case "url.can_parse":
		return p.canParse(params)
	default:
		return types.Failuref("unknown tool: %s", toolID)
	}
}

func (p *Provider) parse(params map[string]any) (*types.Result, error) {
	raw, err := types.GetString(params, "url", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	base, err := types.GetString(params, "base", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	u, err := Parse(raw, base)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(Describe(u))
}

func (p *Provider) resolve(params map[string]any) (*types.Result, error) {
	base, err := types.GetString(params, "base", true)
	if err != nil {
		return types.Failure(err.Error())
	}
	ref, err := types.GetString(params, "ref", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	u, err := weburl.New(ref, base)
	if err != nil {
		return types.Failure(err.Error())
	}
	return types.Success(map[string]any{"href": u.Href()})
}

func (p *Provider) params(params map[string]any) (*types.Result, error) {
	query, err := types.GetString(params, "query", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	sp := weburl.NewSearchParams(query)
	if types.GetBool(params, "sort", false) {
		sp.Sort()
	}
	return types.Success(map[string]any{
		"pairs":      sp.Pairs(),
		"serialized": sp.String(),
	})
}

func (p *Provider) canParse(params map[string]any) (*types.Result, error) {
	raw, err := types.GetString(params, "url", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	base, err := types.GetString(params, "base", false)
	if err != nil {
		return types.Failure(err.Error())
	}
	_, err = Parse(raw, base)
	return types.Success(map[string]any{"can_parse": err == nil})
}

// Parse parses raw, against base when base is non-empty.
func Parse(raw, base string) (*weburl.URL, error) {
	if base != "" {
		return weburl.New(raw, base)
	}
	return weburl.New(raw)
}

// Describe lists every component of u the way URL getters expose them.
func Describe(u *weburl.URL) map[string]any {
	return map[string]any{
		"href":          u.Href(),
		"origin":        u.Origin(),
		"protocol":      u.Protocol(),
		"username":      u.Username(),
		"password":      u.Password(),
		"host":          u.Host(),
		"hostname":      u.Hostname(),
		"port":          u.Port(),
		"pathname":      u.Pathname(),
		"search":        u.Search(),
		"hash":          u.Hash(),
		"search_params": u.SearchParams().Pairs(),
	}
}
