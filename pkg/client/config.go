package client

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/hashicorp-forge/notion-cli/pkg/cache"
	"github.com/hashicorp-forge/notion-cli/pkg/metrics"
	"github.com/hashicorp-forge/notion-cli/pkg/ratelimit"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// DefaultAPIVersion is sent as the Notion-Version header.
	DefaultAPIVersion = "2022-06-28"
)

// Config contains configuration for the API client.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	// Default: "https://api.notion.com/v1"
	BaseURL string

	// Token is the integration token sent as a Bearer credential.
	Token string `json:"-"`

	// APIVersion is sent as the Notion-Version header.
	APIVersion string

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool

	// Timeout bounds each HTTP attempt (connect + read).
	// Default: 30 seconds
	Timeout time.Duration

	// MaxRetries is the total number of attempts for retryable failures.
	// Default: 5
	MaxRetries int

	// InitialBackoff is the wait before the first retry; it doubles on every
	// attempt up to MaxBackoff.
	// Default: 1 second
	InitialBackoff time.Duration

	// MaxBackoff caps the retry wait.
	// Default: 60 seconds
	MaxBackoff time.Duration

	// UseCache is the session default for caching GET responses.
	UseCache bool

	// HTTPClient, if set, supplies the base transport. The client wraps its
	// transport with bearer authentication.
	HTTPClient *http.Client

	// Limiter throttles outbound requests.
	// Default: 3 requests/second with a burst of 5
	Limiter *ratelimit.Limiter

	// Cache stores GET responses. Nil disables caching.
	Cache *cache.Cache

	// Metrics records pipeline counters. Nil records nothing.
	Metrics *metrics.Recorder

	Logger hclog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		BaseURL:        DefaultBaseURL,
		APIVersion:     DefaultAPIVersion,
		TLSVerify:      &tlsVerify,
		Timeout:        30 * time.Second,
		MaxRetries:     5,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     60 * time.Second,
		UseCache:       true,
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = defaults.APIVersion
	}
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = defaults.InitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = defaults.MaxBackoff
	}
	if c.Limiter == nil {
		c.Limiter = ratelimit.New(ratelimit.DefaultRequestsPerSecond, ratelimit.DefaultMaxBurst)
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}

// Validate checks if the configuration is valid. A missing token is reported
// as an authentication error so the CLI exits with the matching code.
func (c *Config) Validate() error {
	if c.Token == "" {
		return NewError(KindAuthentication,
			"No Notion token configured. Set NOTION_INTEGRATION_TOKEN environment variable or use -token option.")
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(validateBaseURL)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.MaxRetries, validation.Required, validation.Min(1)),
		validation.Field(&c.InitialBackoff, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxBackoff, validation.Min(c.InitialBackoff)),
	)
}

func validateBaseURL(value any) error {
	s, _ := value.(string)
	parsedURL, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %s", parsedURL.Scheme)
	}
	return nil
}

// NewHTTPClient creates the HTTP client used for API calls. Every request it
// sends carries the configured token as a Bearer credential.
func (c *Config) NewHTTPClient() *http.Client {
	var base http.RoundTripper
	timeout := c.Timeout

	if c.HTTPClient != nil {
		base = c.HTTPClient.Transport
		if c.HTTPClient.Timeout > 0 {
			timeout = c.HTTPClient.Timeout
		}
	}
	if base == nil {
		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		}

		// Configure TLS verification
		if c.TLSVerify != nil && !*c.TLSVerify {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
		base = transport
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: c.Token,
				TokenType:   "Bearer",
			}),
			Base: base,
		},
	}
}
