package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/document"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
)

var (
	// ErrUnsupportedScheme is returned for schemes the fetcher cannot load.
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	// ErrFileDisabled is returned for file: URLs when file access is off.
	ErrFileDisabled = errors.New("file: navigation disabled")

	errServerStatus = errors.New("server error status")
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Config controls a Fetcher.
type Config struct {
	Timeout      time.Duration
	Retries      int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
	RPS          float64
	Burst        int
	MaxBodyBytes int64
	Sanitize     bool
	AllowFile    bool
	FileRoot     string
}

// FromConfig builds a fetcher Config from application configuration.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Timeout:      cfg.Fetch.Timeout.Std(),
		Retries:      cfg.Fetch.Retries,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		UserAgent:    cfg.Fetch.UserAgent,
		RPS:          cfg.Fetch.RPS,
		Burst:        cfg.Fetch.Burst,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		Sanitize:     cfg.Fetch.Sanitize,
		AllowFile:    cfg.Browser.AllowFileScheme,
		FileRoot:     cfg.Browser.FileRoot,
	}
}

// Option configures a Fetcher.
type Option func(*Fetcher)

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// Fetcher loads documents for full navigations.
type Fetcher struct {
	cfg     Config
	client  *Client
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  trace.Tracer
}

// New creates a Fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = document.MaxHTMLSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	f := &Fetcher{
		cfg:    cfg,
		logger: zap.NewNop(),
		tracer: otel.Tracer("github.com/GriffinCanCode/AgentOS/navigator/fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = NewClient(cfg, f.logger)
	return f
}

// Client exposes the underlying HTTP client.
func (f *Fetcher) Client() *Client {
	return f.client
}

// Load implements navigation.Loader.
func (f *Fetcher) Load(ctx context.Context, req *navigation.Request) (*navigation.Response, error) {
	start := time.Now()
	scheme := req.URL.Scheme
	ctx, span := f.tracer.Start(ctx, "fetch "+scheme, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("url.full", req.URL.Href()),
			attribute.String("http.request.method", req.Method),
			attribute.String("navigation.cache", string(req.Cache)),
		))
	defer span.End()

	var (
		resp *navigation.Response
		err  error
	)
	switch scheme {
	case "http", "https":
		resp, err = f.loadHTTP(ctx, req)
	case "about":
		resp, err = loadAbout(req)
	case "data":
		resp, err = f.loadData(req)
	case "file":
		resp, err = f.loadFile(ctx, req)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		f.metrics.RecordFetch(scheme, 0, time.Since(start), 0)
		f.logger.Warn("Fetch failed",
			zap.String("url", req.URL.Href()),
			zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	f.metrics.RecordFetch(scheme, resp.Status, time.Since(start), len(resp.HTML))
	f.logger.Debug("Fetched document",
		zap.String("url", req.URL.Href()),
		zap.String("final_url", resp.URL),
		zap.Int("status", resp.Status),
		zap.String("content_type", resp.ContentType),
		zap.Bool("no_store", resp.NoStore),
		zap.Duration("duration", time.Since(start)))
	return resp, nil
}

// Unload implements navigation.Loader.
func (f *Fetcher) Unload(doc navigation.Document) {
	f.logger.Debug("Document unloaded",
		zap.String("document_id", doc.ID),
		zap.String("url", doc.Href()))
}

func (f *Fetcher) loadHTTP(ctx context.Context, req *navigation.Request) (*navigation.Response, error) {
	target := req.URL.Href()
	r, err := f.client.Request(ctx)
	if err != nil {
		return nil, err
	}
	r.SetDoNotParseResponse(true).
		SetHeader("Accept", acceptHTML).
		SetHeader("Accept-Encoding", document.AcceptEncoding).
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if req.Referrer != "" {
		r.SetHeader("Referer", req.Referrer)
	}
	if req.Cache == navigation.CacheReload {
		r.SetHeader("Cache-Control", "no-cache").SetHeader("Pragma", "no-cache")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(r.Header))

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	breaker := f.client.Breakers.Get(req.URL.Origin().String())
	resp, err := resilience.Call(breaker, func() (*resty.Response, error) {
		resp, err := r.Execute(method, target)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return resp, errServerStatus
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errServerStatus) {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	raw := resp.RawBody()
	defer raw.Close()
	body, err := io.ReadAll(io.LimitReader(raw, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	body, err = document.Decompress(body, resp.Header().Get("Content-Encoding"), f.cfg.MaxBodyBytes)
	if err != nil {
		return nil, err
	}

	final := target
	if rr := resp.RawResponse; rr != nil && rr.Request != nil && rr.Request.URL != nil {
		final = rr.Request.URL.String()
	}
	return f.buildResponse(final, resp.StatusCode(), resp.Header().Get("Content-Type"),
		isNoStore(resp.Header().Values("Cache-Control")), body), nil
}

// buildResponse decodes body into a navigation response.
func (f *Fetcher) buildResponse(url string, status int, contentType string, noStore bool, body []byte) *navigation.Response {
	mt := document.MediaType(contentType, body)
	out := &navigation.Response{URL: url, Status: status, ContentType: mt, NoStore: noStore}
	if !document.IsText(mt) {
		return out
	}
	if contentType == "" {
		contentType = mt
	}
	text, enc, err := document.ToUTF8(body, contentType)
	if err != nil {
		f.logger.Debug("Charset conversion failed", zap.String("charset", enc), zap.Error(err))
		text = string(body)
	}
	if document.IsHTML(mt) {
		if info, err := document.Parse(text); err == nil {
			out.Title = info.Title
			out.BaseHref = info.BaseHref
		}
		if f.cfg.Sanitize {
			text = document.Sanitize(text)
		}
	}
	out.HTML = text
	return out
}

// isNoStore reports whether any Cache-Control value carries no-store.
func isNoStore(values []string) bool {
	for _, v := range values {
		for _, directive := range strings.Split(v, ",") {
			name, _, _ := strings.Cut(strings.TrimSpace(directive), "=")
			if strings.EqualFold(name, "no-store") {
				return true
			}
		}
	}
	return false
}
