package navigation

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
)

// CacheMode is the cache directive attached to a full navigation request.
type CacheMode string

const (
	// CacheDefault lets the transport use caches and conditional requests.
	CacheDefault CacheMode = "default"
	// CacheReload bypasses caches and drops conditional headers.
	CacheReload CacheMode = "reload"
)

// Request describes one full navigation fetch. URL never carries a fragment.
type Request struct {
	URL      weburl.Record
	Method   string
	Cache    CacheMode
	Referrer string
}

// Response is what a Loader hands back for a successful fetch.
type Response struct {
	// URL is the final URL after redirects; empty means the request URL.
	URL         string
	Status      int
	ContentType string
	// NoStore is set when the response carried Cache-Control: no-store.
	NoStore  bool
	Title    string
	BaseHref string
	HTML     string
}

// Loader is the network and document-replacement collaborator. Unload is
// called with the controller locked and must not call back into it.
type Loader interface {
	Load(ctx context.Context, req *Request) (*Response, error)
	Unload(doc Document)
}

// Document is the active document of a browsing context.
type Document struct {
	ID          string        `json:"id"`
	URL         weburl.Record `json:"-"`
	BaseURL     weburl.Record `json:"-"`
	Title       string        `json:"title"`
	Status      int           `json:"status"`
	ContentType string        `json:"content_type"`
	NoStore     bool          `json:"no_store"`
	HTML        string        `json:"-"`
	LoadedAt    time.Time     `json:"loaded_at"`
}

// Href returns the document URL.
func (d Document) Href() string {
	return d.URL.Href()
}

// LoaderFunc adapts a function to Loader. Unload is a no-op.
type LoaderFunc func(ctx context.Context, req *Request) (*Response, error)

func (f LoaderFunc) Load(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

func (f LoaderFunc) Unload(Document) {}
