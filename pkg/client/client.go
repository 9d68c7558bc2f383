// Package client implements the request pipeline for the Notion API: bearer
// authentication, token-bucket rate limiting, a read-through response cache
// for GET requests, and retry with exponential backoff for transient
// failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/notion-cli/pkg/cache"
	"github.com/hashicorp-forge/notion-cli/pkg/metrics"
	"github.com/hashicorp-forge/notion-cli/pkg/ratelimit"
)

// defaultRetryAfter is used when a 429 response has no usable Retry-After
// header.
const defaultRetryAfter = 1 * time.Second

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Params map[string]string
	Body   any

	// UseCache overrides the session cache default for this call.
	UseCache *bool
}

// Response is the decoded body of a successful call.
type Response struct {
	Data map[string]any

	// Cached is true when Data came from the response cache.
	Cached bool
}

// Client is the API request pipeline. A Client is safe for concurrent use;
// all calls share one rate limiter and one cache.
type Client struct {
	config  *Config
	http    *http.Client
	limiter *ratelimit.Limiter
	cache   *cache.Cache
	metrics *metrics.Recorder
	logger  hclog.Logger
}

// New creates a new Client.
func New(cfg *Config) (*Client, error) {
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		if _, ok := AsAPIError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return &Client{
		config:  cfg,
		http:    cfg.NewHTTPClient(),
		limiter: cfg.Limiter,
		cache:   cfg.Cache,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.Named("client"),
	}, nil
}

// Limiter returns the client's rate limiter.
func (c *Client) Limiter() *ratelimit.Limiter { return c.limiter }

// Cache returns the client's response cache, which may be nil.
func (c *Client) Cache() *cache.Cache { return c.cache }

// RequestOption modifies a Request built by the method helpers.
type RequestOption func(*Request)

// WithCache overrides the session cache default for one call.
func WithCache(enabled bool) RequestOption {
	return func(r *Request) {
		r.UseCache = &enabled
	}
}

// WithParams sets query parameters.
func WithParams(params map[string]string) RequestOption {
	return func(r *Request) {
		r.Params = params
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (map[string]any, error) {
	return c.data(ctx, http.MethodGet, path, nil, opts)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (map[string]any, error) {
	return c.data(ctx, http.MethodPost, path, body, opts)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (map[string]any, error) {
	return c.data(ctx, http.MethodPatch, path, body, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (map[string]any, error) {
	return c.data(ctx, http.MethodDelete, path, nil, opts)
}

func (c *Client) data(ctx context.Context, method, path string, body any, opts []RequestOption) (map[string]any, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Body:   body,
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Do runs a request through the pipeline. Cacheable GET requests are served
// from the cache without touching the rate limiter or the network. Failed
// attempts of a retryable kind are retried with exponential backoff; the
// error of the last attempt is returned once the attempt budget is spent.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	shouldCache := c.config.UseCache
	if r.UseCache != nil {
		shouldCache = *r.UseCache
	}
	cacheable := r.Method == http.MethodGet && shouldCache && c.cache != nil

	if cacheable {
		if data, ok := c.cache.Get(r.Path, r.Params); ok {
			c.logger.Debug("cache hit", "path", r.Path)
			c.metrics.CacheHit()
			return &Response{Data: data, Cached: true}, nil
		}
		c.metrics.CacheMiss()
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request body: %w", err)
		}
	}

	b := c.newBackOff()
	for attempt := 1; ; attempt++ {
		data, err := c.attempt(ctx, r, body)
		if err == nil {
			if cacheable {
				if err := c.cache.Set(r.Path, r.Params, data, 0); err != nil {
					c.logger.Warn("error caching response", "path", r.Path, "error", err)
				}
			}
			return &Response{Data: data}, nil
		}

		apiErr, ok := AsAPIError(err)
		if !ok {
			return nil, err
		}
		if apiErr.Kind == KindRateLimit {
			apiErr.Attempts = attempt
		}
		if !apiErr.Retryable() || attempt >= c.config.MaxRetries {
			return nil, apiErr
		}

		wait := b.NextBackOff()
		c.logger.Warn("retrying request",
			"method", r.Method,
			"path", r.Path,
			"attempt", attempt,
			"error", apiErr.Code(),
			"backoff", wait,
		)
		c.metrics.Retry(apiErr.Code())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// newBackOff returns the retry schedule: InitialBackoff doubling on every
// retry, capped at MaxBackoff, without jitter and without an elapsed-time
// limit (the attempt count bounds the loop).
func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.config.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// attempt performs a single HTTP exchange.
func (c *Client) attempt(ctx context.Context, r *Request, body []byte) (map[string]any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.buildURL(r.Path, r.Params), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Notion-Version", c.config.APIVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.logger.Trace("sending request", "method", r.Method, "path", r.Path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		apiErr := ClassifyTransport(err)
		c.metrics.ObserveRequest(r.Method, apiErr.Code(), time.Since(start))
		return nil, apiErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := ClassifyTransport(err)
		c.metrics.ObserveRequest(r.Method, apiErr.Code(), time.Since(start))
		return nil, apiErr
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.metrics.ObserveRequest(r.Method, KindRateLimit.String(), time.Since(start))
		c.logger.Warn("rate limited by API, waiting", "path", r.Path, "retry_after", retryAfter)

		if err := c.limiter.WaitForRetry(ctx, retryAfter); err != nil {
			return nil, err
		}

		apiErr := Classify(resp.StatusCode, parseErrorBody(respBody))
		apiErr.RetryAfter = retryAfter
		return nil, apiErr
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := Classify(resp.StatusCode, parseErrorBody(respBody))
		c.metrics.ObserveRequest(r.Method, apiErr.Code(), time.Since(start))
		c.logger.Debug("request failed",
			"method", r.Method,
			"path", r.Path,
			"status", resp.StatusCode,
			"error", apiErr.Message,
		)
		return nil, apiErr
	}

	c.metrics.ObserveRequest(r.Method, "success", time.Since(start))

	data := map[string]any{}
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, &data); err != nil {
			return nil, fmt.Errorf("error decoding response: %w", err)
		}
	}
	return data, nil
}

// buildURL constructs a URL with query parameters.
func (c *Client) buildURL(path string, params map[string]string) string {
	u, _ := url.Parse(strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"))

	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// parseRetryAfter reads a Retry-After header given in whole seconds.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// Close releases idle connections and closes the cache.
func (c *Client) Close() error {
	var result *multierror.Error

	c.http.CloseIdleConnections()
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("error closing cache: %w", err))
		}
	}

	return result.ErrorOrNil()
}
