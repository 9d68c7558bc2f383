// Package config builds the CLI settings from defaults, an optional HCL
// config file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/hashicorp-forge/notion-cli/pkg/cache"
	"github.com/hashicorp-forge/notion-cli/pkg/client"
	"github.com/hashicorp-forge/notion-cli/pkg/metrics"
	"github.com/hashicorp-forge/notion-cli/pkg/output"
	"github.com/hashicorp-forge/notion-cli/pkg/ratelimit"
)

// Environment variables read by Load.
const (
	EnvToken    = "NOTION_INTEGRATION_TOKEN"
	EnvCacheDir = "NOTION_CLI_CACHE_DIR"
	EnvFormat   = "NOTION_CLI_FORMAT"
	EnvLogLevel = "NOTION_CLI_LOG_LEVEL"
	EnvConfig   = "NOTION_CLI_CONFIG"
	EnvBaseURL  = "NOTION_CLI_BASE_URL"
	EnvNoCache  = "NOTION_CLI_NO_CACHE"
)

const defaultDotEnv = ".env"

// Settings is the CLI configuration. It is built once per invocation and
// passed to every component.
type Settings struct {
	// Token is the integration token.
	Token string `hcl:"token,optional"`

	// BaseURL is the API root.
	BaseURL string `hcl:"base_url,optional"`

	// APIVersion is sent as the Notion-Version header.
	APIVersion string `hcl:"api_version,optional"`

	// CacheDir is the response cache directory.
	CacheDir string `hcl:"cache_dir,optional"`

	// CacheTTL is the response cache lifetime in seconds.
	CacheTTL int `hcl:"cache_ttl,optional"`

	// UseCache enables the response cache for GET requests.
	UseCache *bool `hcl:"use_cache,optional"`

	// Timeout bounds each HTTP attempt, in seconds.
	Timeout int `hcl:"timeout,optional"`

	// MaxRetries is the total number of attempts for retryable failures.
	MaxRetries int `hcl:"max_retries,optional"`

	// RequestsPerSecond and MaxBurst configure the rate limiter.
	RequestsPerSecond float64 `hcl:"requests_per_second,optional"`
	MaxBurst          int     `hcl:"max_burst,optional"`

	// Concurrency bounds parallel child fetches.
	Concurrency int `hcl:"concurrency,optional"`

	// OutputFormat is one of json, pretty, compact, yaml or markdown.
	OutputFormat string `hcl:"output_format,optional"`

	// LogLevel is an hclog level name.
	LogLevel string `hcl:"log_level,optional"`
}

// Default returns the built-in settings.
func Default() *Settings {
	useCache := true
	return &Settings{
		BaseURL:           client.DefaultBaseURL,
		APIVersion:        client.DefaultAPIVersion,
		CacheDir:          cache.DefaultDir(),
		CacheTTL:          300,
		UseCache:          &useCache,
		Timeout:           30,
		MaxRetries:        5,
		RequestsPerSecond: ratelimit.DefaultRequestsPerSecond,
		MaxBurst:          ratelimit.DefaultMaxBurst,
		Concurrency:       4,
		OutputFormat:      string(output.FormatJSON),
		LogLevel:          "warn",
	}
}

// DefaultConfigFile returns ~/.config/notion-cli/config.hcl, or an empty
// string when the config directory cannot be determined.
func DefaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "notion-cli", "config.hcl")
}

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigFile is an explicit config file, which must exist. When empty,
	// the NOTION_CLI_CONFIG file or the default file is read if present.
	ConfigFile string

	// DotEnv is the .env file to read. Default: ".env"
	DotEnv string

	// LookupEnv reads the environment. Default: os.LookupEnv
	LookupEnv func(string) (string, bool)
}

// Load builds settings from, in increasing precedence, the defaults, the
// config file, the .env file and the environment. Values in the process
// environment win over the .env file.
func Load(opts LoadOptions) (*Settings, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	dotEnvPath := opts.DotEnv
	if dotEnvPath == "" {
		dotEnvPath = defaultDotEnv
	}
	dotEnv, err := godotenv.Read(dotEnvPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", dotEnvPath, err)
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotEnv[key]
		return v, ok
	}

	s := Default()

	path, explicit := opts.ConfigFile, opts.ConfigFile != ""
	if !explicit {
		if v, ok := env(EnvConfig); ok && v != "" {
			path, explicit = v, true
		} else {
			path = DefaultConfigFile()
		}
	}
	if path != "" {
		if err := s.mergeFile(path, explicit); err != nil {
			return nil, err
		}
	}

	if v, ok := env(EnvToken); ok && v != "" {
		s.Token = v
	}
	if v, ok := env(EnvCacheDir); ok && v != "" {
		s.CacheDir = v
	}
	if v, ok := env(EnvFormat); ok && v != "" {
		s.OutputFormat = v
	}
	if v, ok := env(EnvLogLevel); ok && v != "" {
		s.LogLevel = v
	}
	if v, ok := env(EnvBaseURL); ok && v != "" {
		s.BaseURL = v
	}
	if v, ok := env(EnvNoCache); ok && v != "" {
		noCache, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvNoCache, err)
		}
		useCache := !noCache
		s.UseCache = &useCache
	}

	return s, nil
}

// mergeFile overlays the values set in an HCL config file.
func (s *Settings) mergeFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("configuration file not found: %s", path)
	}

	var f Settings
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if f.Token != "" {
		s.Token = f.Token
	}
	if f.BaseURL != "" {
		s.BaseURL = f.BaseURL
	}
	if f.APIVersion != "" {
		s.APIVersion = f.APIVersion
	}
	if f.CacheDir != "" {
		s.CacheDir = expandHome(f.CacheDir)
	}
	if f.CacheTTL != 0 {
		s.CacheTTL = f.CacheTTL
	}
	if f.UseCache != nil {
		s.UseCache = f.UseCache
	}
	if f.Timeout != 0 {
		s.Timeout = f.Timeout
	}
	if f.MaxRetries != 0 {
		s.MaxRetries = f.MaxRetries
	}
	if f.RequestsPerSecond != 0 {
		s.RequestsPerSecond = f.RequestsPerSecond
	}
	if f.MaxBurst != 0 {
		s.MaxBurst = f.MaxBurst
	}
	if f.Concurrency != 0 {
		s.Concurrency = f.Concurrency
	}
	if f.OutputFormat != "" {
		s.OutputFormat = f.OutputFormat
	}
	if f.LogLevel != "" {
		s.LogLevel = f.LogLevel
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the settings. The token is not checked here; commands
// that call the API report a missing token as an authentication error.
func (s *Settings) Validate() error {
	formats := make([]any, 0, len(output.Formats))
	for _, f := range output.Formats {
		formats = append(formats, string(f))
	}

	return validation.ValidateStruct(s,
		validation.Field(&s.BaseURL, validation.Required),
		validation.Field(&s.CacheDir, validation.Required),
		validation.Field(&s.CacheTTL, validation.Required, validation.Min(1)),
		validation.Field(&s.Timeout, validation.Required, validation.Min(1)),
		validation.Field(&s.MaxRetries, validation.Required, validation.Min(1)),
		validation.Field(&s.RequestsPerSecond, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&s.MaxBurst, validation.Required, validation.Min(1)),
		validation.Field(&s.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&s.OutputFormat, validation.In(formats...)),
		validation.Field(&s.LogLevel, validation.By(validateLogLevel)),
	)
}

func validateLogLevel(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if hclog.LevelFromString(s) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

// RequireToken returns the integration token, or an authentication error
// when none is configured.
func (s *Settings) RequireToken() (string, error) {
	if s.Token == "" {
		return "", client.NewError(client.KindAuthentication,
			"No Notion token configured. Set %s environment variable or use -token option.", EnvToken)
	}
	return s.Token, nil
}

// CacheEnabled reports whether GET responses are cached.
func (s *Settings) CacheEnabled() bool {
	return s.UseCache == nil || *s.UseCache
}

// NewCache creates the response cache described by the settings.
func (s *Settings) NewCache(logger hclog.Logger) *cache.Cache {
	return cache.New(cache.Config{
		Dir:        s.CacheDir,
		DefaultTTL: time.Duration(s.CacheTTL) * time.Second,
		Enabled:    true,
		Logger:     logger,
	})
}

// ClientConfig returns the request pipeline configuration.
func (s *Settings) ClientConfig(logger hclog.Logger, rec *metrics.Recorder) *client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = s.BaseURL
	cfg.Token = s.Token
	cfg.APIVersion = s.APIVersion
	cfg.Timeout = time.Duration(s.Timeout) * time.Second
	cfg.MaxRetries = s.MaxRetries
	cfg.UseCache = s.CacheEnabled()
	cfg.Limiter = ratelimit.New(s.RequestsPerSecond, s.MaxBurst)
	cfg.Cache = s.NewCache(logger)
	cfg.Metrics = rec
	cfg.Logger = logger
	return cfg
}
