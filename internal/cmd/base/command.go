// Package base contains the pieces shared by every CLI command: the command
// struct embedded by each subcommand, the global flags and the per-run
// session that wires settings into the API client and output printer.
package base

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-cli/internal/config"
	"github.com/hashicorp-forge/notion-cli/pkg/api"
	"github.com/hashicorp-forge/notion-cli/pkg/client"
	"github.com/hashicorp-forge/notion-cli/pkg/ids"
	"github.com/hashicorp-forge/notion-cli/pkg/metrics"
	"github.com/hashicorp-forge/notion-cli/pkg/output"
)

// Command is embedded by every subcommand.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Out receives command results. Default: os.Stdout
	Out io.Writer

	// Err receives error envelopes. Default: os.Stderr
	Err io.Writer

	// Env controls where settings are loaded from.
	Env config.LoadOptions
}

func (c *Command) stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Command) stderr() io.Writer {
	if c.Err != nil {
		return c.Err
	}
	return os.Stderr
}

// Logger returns the command logger, or a null logger when unset.
func (c *Command) Logger() hclog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return hclog.NewNullLogger()
}

// GlobalFlags are accepted by every command that reads settings.
type GlobalFlags struct {
	Token       string
	Format      string
	CacheDir    string
	Config      string
	MetricsFile string
	NoCache     bool
	Debug       bool
}

// Register adds the global flags to f.
func (g *GlobalFlags) Register(f *FlagSet) {
	f.StringVar(&g.Token, "token", "",
		fmt.Sprintf("Integration token. Overrides the %s environment variable.", config.EnvToken))
	f.StringVar(&g.Format, "format", "",
		fmt.Sprintf("Output format: json, pretty, compact, yaml or markdown [%s].", config.EnvFormat))
	f.BoolVar(&g.NoCache, "no-cache", false, "Bypass the response cache.")
	f.StringVar(&g.CacheDir, "cache-dir", "",
		fmt.Sprintf("Response cache directory [%s].", config.EnvCacheDir))
	f.StringVar(&g.Config, "config", "",
		fmt.Sprintf("Path to an HCL config file [%s].", config.EnvConfig))
	f.BoolVar(&g.Debug, "debug", false, "Enable debug logging on stderr.")
	f.StringVar(&g.MetricsFile, "metrics-file", "",
		"Write request metrics in Prometheus text format to this file on exit.")
}

// Settings loads settings and applies the global flags on top.
func (c *Command) Settings(g *GlobalFlags) (*config.Settings, error) {
	opts := c.Env
	if g.Config != "" {
		opts.ConfigFile = g.Config
	}

	s, err := config.Load(opts)
	if err != nil {
		return nil, err
	}

	if g.Token != "" {
		s.Token = g.Token
	}
	if g.Format != "" {
		s.OutputFormat = g.Format
	}
	if g.CacheDir != "" {
		s.CacheDir = g.CacheDir
	}
	if g.NoCache {
		useCache := false
		s.UseCache = &useCache
	}
	if g.Debug {
		s.LogLevel = "debug"
	}

	if err := s.Validate(); err != nil {
		return nil, client.NewError(client.KindValidation, "invalid configuration: %v", err)
	}

	if c.Log != nil {
		c.Log.SetLevel(hclog.LevelFromString(s.LogLevel))
	}
	return s, nil
}

// Printer returns a printer writing results in the configured format.
func (c *Command) Printer(s *config.Settings) *output.Printer {
	return output.New(output.Format(s.OutputFormat), c.stdout())
}

// Fail writes the error envelope for err to stderr and returns the exit
// code for it.
func (c *Command) Fail(g *GlobalFlags, err error) int {
	format, perr := output.ParseFormat(g.Format)
	if perr != nil {
		format = output.FormatJSON
	}
	return c.fail(format, err)
}

func (c *Command) fail(format output.Format, err error) int {
	c.Logger().Debug("command failed", "error", err)
	if perr := output.New(format, c.stderr()).Error(err); perr != nil {
		c.Logger().Error("error writing error output", "error", perr)
	}
	return client.ExitCodeOf(err)
}

// Session is the set of components used by one command invocation.
type Session struct {
	Settings *config.Settings
	Log      hclog.Logger
	Client   *client.Client
	API      *api.Service
	Printer  *output.Printer
	Metrics  *metrics.Recorder

	metricsFile string
}

// Open builds a session from the global flags.
func (c *Command) Open(g *GlobalFlags) (*Session, error) {
	s, err := c.Settings(g)
	if err != nil {
		return nil, err
	}

	var rec *metrics.Recorder
	if g.MetricsFile != "" {
		rec = metrics.NewRecorder()
	}

	log := c.Logger()
	cl, err := client.New(s.ClientConfig(log, rec))
	if err != nil {
		return nil, err
	}

	return &Session{
		Settings:    s,
		Log:         log,
		Client:      cl,
		API:         api.New(cl, api.WithConcurrency(s.Concurrency), api.WithLogger(log)),
		Printer:     c.Printer(s),
		Metrics:     rec,
		metricsFile: g.MetricsFile,
	}, nil
}

// Close writes the metrics file, if requested, and releases the client.
func (s *Session) Close() error {
	var result *multierror.Error
	if s.metricsFile != "" {
		if err := s.Metrics.WriteFile(s.metricsFile); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := s.Client.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Execute opens a session, runs fn with a context cancelled on interrupt
// and reports any error as an error envelope.
func (c *Command) Execute(g *GlobalFlags, fn func(ctx context.Context, s *Session) error) int {
	sess, err := c.Open(g)
	if err != nil {
		return c.Fail(g, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	code := 0
	if err := fn(ctx, sess); err != nil {
		code = c.fail(sess.Printer.Format, err)
	}
	if err := sess.Close(); err != nil {
		sess.Log.Warn("error closing session", "error", err)
	}
	return code
}

// UsageError reports invalid command line arguments.
func UsageError(format string, args ...any) error {
	return client.NewError(client.KindValidation, format, args...)
}

// Args checks that exactly the named positional arguments were given.
func Args(args []string, names ...string) error {
	if len(args) != len(names) {
		return UsageError("expected %d argument(s) %v, got %d", len(names), names, len(args))
	}
	return nil
}

// ID normalizes an object ID argument, reporting malformed input as a
// validation error.
func ID(name, value string) (string, error) {
	id, err := ids.Normalize(value)
	if err != nil {
		return "", UsageError("invalid %s: %v", name, err)
	}
	return id, nil
}
