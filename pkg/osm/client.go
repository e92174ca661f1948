package osm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmingest/pkg/core"
	"github.com/NERVsystems/osmingest/pkg/tracing"
)

// Fetcher is what the pipeline needs from an Overpass client
type Fetcher interface {
	Query(ctx context.Context, query string) ([]Element, error)
}

// Options configures a Client
type Options struct {
	// Endpoint is the Overpass interpreter URL
	Endpoint string

	// UserAgent is sent with every request
	UserAgent string

	// HTTPClient performs the requests; its Timeout bounds each attempt
	HTTPClient *http.Client

	// Limiter paces requests; nil disables pacing
	Limiter core.Limiter

	// Retry controls backoff on transient failures
	Retry core.RetryOptions

	// CacheSize is the number of query results kept in memory; 0 disables caching
	CacheSize int

	// CacheTTL is how long a cached result stays valid
	CacheTTL time.Duration

	// Hooks overrides the global monitoring hooks
	Hooks *MonitoringHooks

	Logger *slog.Logger
}

// DefaultOptions returns options suitable for the public Overpass instance
func DefaultOptions() Options {
	return Options{
		Endpoint:   OverpassBaseURL,
		UserAgent:  UserAgent,
		HTTPClient: NewHTTPClient(DefaultTimeout),
		Limiter:    NewLimiter(DefaultRequestInterval, 1),
		Retry:      core.DefaultRetryOptions,
		CacheSize:  16,
		CacheTTL:   time.Hour,
	}
}

// Client talks to the Overpass API
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	limiter    core.Limiter
	retry      core.RetryOptions
	cache      *expirable.LRU[string, []Element]
	hooks      *MonitoringHooks
	logger     *slog.Logger
}

// NewClient creates a new Overpass client
func NewClient(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = OverpassBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(DefaultTimeout)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		endpoint:   opts.Endpoint,
		userAgent:  opts.UserAgent,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		retry:      opts.Retry,
		hooks:      opts.Hooks,
		logger:     opts.Logger.With("service", tracing.ServiceOverpass),
	}
	if opts.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, []Element](opts.CacheSize, nil, opts.CacheTTL)
	}
	return c
}

// Endpoint returns the configured interpreter URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) hookSet() hookSet {
	if c.hooks != nil {
		return hookSet{c.hooks}
	}
	return hookSet{getMonitoringHooks()}
}

// Query POSTs an Overpass QL query and returns the decoded elements.
// The returned slice may be shared with the cache and must not be modified.
func (c *Client) Query(ctx context.Context, query string) ([]Element, error) {
	hooks := c.hookSet()
	service := tracing.ServiceOverpass

	if strings.TrimSpace(query) == "" {
		return nil, core.NewError(core.ErrInvalidInput, "empty Overpass query")
	}

	ctx, span := tracing.StartSpan(ctx, "overpass.query",
		trace.WithAttributes(attribute.Int(tracing.AttrQueryBytes, len(query))),
	)
	defer span.End()

	if c.cache != nil {
		elements, ok := c.cache.Get(query)
		hooks.cache(service, ok)
		tracing.SetAttributes(ctx, tracing.CacheAttributes(tracing.CacheTypeOverpass, ok)...)
		if ok {
			c.logger.Debug("overpass cache hit", "elements", len(elements))
			tracing.SetAttributes(ctx, attribute.Int(tracing.AttrElementsFetched, len(elements)))
			tracing.SetStatus(ctx, codes.Ok, "")
			return elements, nil
		}
	}

	hooks.request(service, "query")
	start := time.Now()

	retry := c.retry
	retry.OnRetry = func(attempt int, _ time.Duration, _ error) {
		hooks.retry(service, attempt)
	}

	factory := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		return req, nil
	}

	elements, err := c.do(ctx, factory, retry, hooks)
	duration := time.Since(start)
	hooks.response(service, "query", duration, err == nil)

	if err != nil {
		errType := string(core.Code(err))
		if errType == "" {
			errType = "request_error"
		}
		hooks.err(service, errType)

		status := 0
		var ie *core.IngestError
		if errors.As(err, &ie) {
			status = ie.StatusCode
			if ie.Query == "" {
				ie.WithQuery(query)
			}
		}
		tracing.SetAttributes(ctx, tracing.ServiceAttributes(service, "query", c.endpoint, status)...)
		tracing.RecordError(ctx, errType, err)
		c.logger.Error("overpass query failed",
			"error", err,
			"duration", duration,
		)
		return nil, err
	}

	tracing.SetAttributes(ctx, tracing.ServiceAttributes(service, "query", c.endpoint, http.StatusOK)...)
	tracing.SetAttributes(ctx, attribute.Int(tracing.AttrElementsFetched, len(elements)))
	tracing.SetStatus(ctx, codes.Ok, "")
	c.logger.Debug("overpass query succeeded",
		"elements", len(elements),
		"duration", duration,
	)

	if c.cache != nil {
		c.cache.Add(query, elements)
	}
	return elements, nil
}

func (c *Client) do(ctx context.Context, factory core.RequestFactory, retry core.RetryOptions, hooks hookSet) ([]Element, error) {
	var limiter core.Limiter
	if c.limiter != nil {
		limiter = &timedLimiter{inner: c.limiter, hooks: hooks}
	}

	var payload Response
	decode := func(resp *http.Response) error {
		payload = Response{}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return core.NewError(core.ErrParseError, "failed to decode Overpass response").
				WithGuidance("The endpoint did not return Overpass JSON").
				WithCause(err)
		}
		return nil
	}
	if err := core.WithRetryFactory(ctx, factory, c.httpClient, limiter, retry, decode); err != nil {
		return nil, err
	}

	// Overpass reports query timeouts and memory exhaustion as a 200 with a remark
	if strings.Contains(payload.Remark, "runtime error") {
		return nil, core.NewError(core.ErrServiceTimeout, payload.Remark).
			WithGuidance("Overpass aborted the query. Try a smaller bounding box or a larger [timeout:]")
	}

	if payload.Elements == nil {
		return nil, core.NewError(core.ErrParseError, "Overpass response has no elements array")
	}
	return *payload.Elements, nil
}

// healthQuery is the cheapest query Overpass answers with a JSON envelope
const healthQuery = "[out:json];out meta;"

// CheckHealth performs a cheap request to verify the endpoint is reachable
func (c *Client) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create overpass health check request: %w", err)
	}
	req.URL.RawQuery = url.Values{"data": {healthQuery}}.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("overpass health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("overpass health check returned status %d", resp.StatusCode)
	}
	return nil
}

// timedLimiter reports limiter waits long enough to matter
type timedLimiter struct {
	inner core.Limiter
	hooks hookSet
}

func (l *timedLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	err := l.inner.Wait(ctx)
	if waited := time.Since(start); waited > 100*time.Millisecond {
		l.hooks.rateLimit(tracing.ServiceOverpass, waited)
		tracing.AddEvent(ctx, "rate_limit_wait",
			trace.WithAttributes(
				attribute.String(tracing.AttrRateLimitService, tracing.ServiceOverpass),
				attribute.Int64(tracing.AttrRateLimitWaitMs, waited.Milliseconds()),
			),
		)
	}
	return err
}
