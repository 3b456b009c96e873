package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/No25ha/Market/pkg/eventbus"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// Config holds HTTP client configuration.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxConnsPerHost int
	// RateLimit is the sustained outbound request rate per second. Zero
	// disables limiting.
	RateLimit float64
	RateBurst int
	UserAgent string
}

// DefaultConfig returns sensible defaults for the given upstream.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		MaxConnsPerHost: 16,
		RateLimit:       10,
		RateBurst:       20,
		UserAgent:       "market-storefront/1.0",
	}
}

// Request describes one upstream call. Path is relative to the base URL.
// Route is the templated path used as a metrics label; Path is used when
// it is empty.
type Request struct {
	Method string
	Path   string
	Route  string
	Query  url.Values
	Body   any
	// Token is sent as the raw `token` header the upstream expects.
	Token  string
	Header http.Header
}

// Response is a successful (2xx) upstream answer.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &APIError{Status: 0, Cause: fmt.Errorf("decode response: %w", err), local: true}
	}
	return nil
}

// AuthFailure is published whenever the upstream rejects a session token.
type AuthFailure struct {
	Status  int
	Message string
	Method  string
	Path    string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAuthFailures makes the client publish an AuthFailure on bus for every
// response that invalidates the session.
func WithAuthFailures(bus *eventbus.Bus[AuthFailure]) Option {
	return func(c *Client) { c.authFailures = bus }
}

// WithBreaker guards upstream calls with a circuit breaker.
func WithBreaker(cfg CircuitBreakerConfig) Option {
	return func(c *Client) { c.breaker = newBreaker(cfg, c) }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client talks to the upstream REST API. It makes exactly one attempt per
// call; retrying is the caller's decision.
type Client struct {
	httpClient   *http.Client
	config       Config
	baseURL      *url.URL
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[*Response]
	breakerName  string
	authFailures *eventbus.Bus[AuthFailure]
	logger       *slog.Logger
	tracer       trace.Tracer
}

// New creates a client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config:  cfg,
		baseURL: base,
		logger:  slog.Default(),
		tracer:  otel.Tracer("github.com/No25ha/Market/pkg/httpclient"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do executes req once. Any non-2xx answer or transport failure comes back
// as an *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}

	ctx, span := c.tracer.Start(ctx, req.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.route", route),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.execute(ctx, req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.Status
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	observeRequest(req.Method, route, status, elapsed)
	span.SetAttributes(attribute.Int("http.status_code", status))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.DebugContext(ctx, "upstream request failed",
			slog.String("method", req.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		if apiErr != nil && apiErr.AuthInvalidated() && c.authFailures != nil {
			c.authFailures.Publish(ctx, AuthFailure{
				Status:  apiErr.Status,
				Message: apiErr.Error(),
				Method:  req.Method,
				Path:    req.Path,
			})
		}
		return nil, err
	}

	c.logger.DebugContext(ctx, "upstream request",
		slog.String("method", req.Method),
		slog.String("route", route),
		slog.Int("status", status),
		slog.Duration("duration", elapsed),
	)
	return resp, nil
}

func (c *Client) execute(ctx context.Context, req *Request) (*Response, error) {
	if c.breaker == nil {
		return c.roundTrip(ctx, req)
	}

	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.roundTrip(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &APIError{
			Method:  req.Method,
			Path:    req.Path,
			Cause:   ErrCircuitOpen,
			Message: NormalizeMessage(0, nil, ErrCircuitOpen, DefaultMessage),
		}
	}
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	fail := func(status int, body []byte, cause error, local bool) *APIError {
		return &APIError{
			Method:  req.Method,
			Path:    req.Path,
			Status:  status,
			Body:    body,
			Cause:   cause,
			Message: NormalizeMessage(status, body, cause, DefaultMessage),
			local:   local,
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fail(0, nil, err, true)
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, fail(0, nil, err, true)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fail(0, nil, err, false)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fail(0, nil, fmt.Errorf("read response body: %w", err), false)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fail(httpResp.StatusCode, body, nil, false)
	}

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	u, err := url.Parse(c.baseURL.String() + "/" + strings.TrimLeft(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("build request url: %w", err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", req.Method, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if req.Token != "" {
		httpReq.Header.Set("token", req.Token)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}
