package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/resilience"
)

// Client wraps resty with rate limiting and a circuit breaker per origin.
type Client struct {
	Resty    *resty.Client
	Limiter  *rate.Limiter
	Breakers *resilience.Group
	mu       sync.RWMutex
}

// NewClient builds the HTTP client. Retries happen in the retryablehttp
// transport, so resty itself never retries.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	breakers := resilience.NewGroup(resilience.Settings{
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			// sites vary in reliability, so be lenient
			return c.ConsecutiveFailures >= 10 ||
				(c.Requests >= 20 && float64(c.TotalFailures)/float64(c.Requests) > 0.7)
		},
		OnStateChange: func(origin string, from, to resilience.State) {
			logger.Warn("Origin circuit breaker changed state",
				zap.String("origin", origin),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	c := &Client{Resty: restyClient, Breakers: breakers}
	c.SetRateLimit(cfg.RPS, cfg.Burst)
	return c
}

// SetHeader adds a default header.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// SetTimeout configures the request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetTimeout(d)
}

// SetRateLimit configures requests per second; rps <= 0 disables limiting.
func (c *Client) SetRateLimit(rps float64, burst int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst <= 0 {
		burst = max(1, int(rps))
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Request waits for the limiter and returns a request bound to ctx.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.Limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// BreakerStates reports the breaker state per origin.
func (c *Client) BreakerStates() map[string]string {
	out := map[string]string{}
	for origin, s := range c.Breakers.States() {
		out[origin] = s.String()
	}
	return out
}

// leveledLogger routes retryablehttp logging to zap.
type leveledLogger struct {
	l *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.l.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.l.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.l.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.l.Warnw(msg, kv...) }
