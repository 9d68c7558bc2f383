package cache

import (
	"flag"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/internal/config"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage the response cache"
}

func (c *Command) Help() string {
	return `Usage: notion cache <subcommand> [options]

  This command groups subcommands for inspecting and clearing the local
  response cache. They do not require a token.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ClearCommand struct {
	*base.Command

	global base.GlobalFlags

	flagPattern string
}

func (c *ClearCommand) Synopsis() string {
	return "Clear cached responses"
}

func (c *ClearCommand) Help() string {
	return `Usage: notion cache clear [options]

  Remove every cached response from the cache directory.` +
		c.Flags().Help()
}

func (c *ClearCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("clear", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagPattern, "pattern", "", "Pattern of entries to clear. Currently every entry is cleared.")

	return f
}

func (c *ClearCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if err := base.Args(flags.Args()); err != nil {
		return c.Fail(&c.global, err)
	}

	s, err := c.Settings(&c.global)
	if err != nil {
		return c.Fail(&c.global, err)
	}

	cleared, err := clearCache(c, s, c.flagPattern)
	if err != nil {
		return c.Fail(&c.global, err)
	}

	if err := c.Printer(s).Value(map[string]any{
		"cleared":   cleared,
		"cache_dir": s.CacheDir,
	}); err != nil {
		return c.Fail(&c.global, err)
	}
	return 0
}

func clearCache(c *ClearCommand, s *config.Settings, pattern string) (int, error) {
	rc := s.NewCache(c.Logger())
	cleared, err := rc.Invalidate(pattern)
	if cerr := rc.Close(); cerr != nil {
		err = multierror.Append(err, cerr).ErrorOrNil()
	}
	return cleared, err
}

type InfoCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *InfoCommand) Synopsis() string {
	return "Show cache information"
}

func (c *InfoCommand) Help() string {
	return `Usage: notion cache info [options]

  Show the cache directory, the number of stored entries and the cache
  settings.` +
		c.Flags().Help()
}

func (c *InfoCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("info", flag.ContinueOnError))
	c.global.Register(f)
	return f
}

func (c *InfoCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if err := base.Args(flags.Args()); err != nil {
		return c.Fail(&c.global, err)
	}

	s, err := c.Settings(&c.global)
	if err != nil {
		return c.Fail(&c.global, err)
	}

	rc := s.NewCache(c.Logger())
	defer rc.Close()

	entries, err := rc.Len()
	if err != nil {
		return c.Fail(&c.global, err)
	}

	if err := c.Printer(s).Value(map[string]any{
		"cache_dir":   s.CacheDir,
		"entries":     entries,
		"enabled":     s.CacheEnabled(),
		"default_ttl": s.CacheTTL,
	}); err != nil {
		return c.Fail(&c.global, err)
	}
	return 0
}
