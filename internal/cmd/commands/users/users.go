package users

import (
	"context"
	"flag"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/pkg/api"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "List and retrieve workspace users"
}

func (c *Command) Help() string {
	return `Usage: notion users <subcommand> [options] [args]

  This command groups subcommands for reading workspace users and bots.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command

	global base.GlobalFlags

	flagStartCursor string
	flagPageSize    int
	flagAll         bool
}

func (c *ListCommand) Synopsis() string {
	return "List users"
}

func (c *ListCommand) Help() string {
	return `Usage: notion users list [options]

  List the users of the workspace.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagStartCursor, "start-cursor", "", "Cursor returned by a previous call.")
	f.IntVar(&c.flagPageSize, "page-size", 0, "Number of results per page (max 100).")
	f.BoolVar(&c.flagAll, "all", false, "Fetch every user, following pagination.")

	return f
}

func (c *ListCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if err := base.Args(flags.Args()); err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		if c.flagAll {
			results, err := s.API.Users.ListAll(ctx)
			if err != nil {
				return err
			}
			return s.Printer.List(results, false, "")
		}

		resp, err := s.API.Users.List(ctx, api.ListOptions{StartCursor: c.flagStartCursor, PageSize: c.flagPageSize})
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type GetCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *GetCommand) Synopsis() string {
	return "Retrieve a user"
}

func (c *GetCommand) Help() string {
	return `Usage: notion users get USER_ID [options]

  Retrieve a user or bot.` +
		c.Flags().Help()
}

func (c *GetCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("get", flag.ContinueOnError))
	c.global.Register(f)
	return f
}

func (c *GetCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if err := base.Args(flags.Args(), "USER_ID"); err != nil {
		return c.Fail(&c.global, err)
	}
	userID, err := base.ID("user ID", flags.Args()[0])
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Users.Get(ctx, userID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type MeCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *MeCommand) Synopsis() string {
	return "Retrieve the integration's bot user"
}

func (c *MeCommand) Help() string {
	return `Usage: notion users me [options]

  Retrieve the bot user of the configured token. Useful to check that the
  token is valid.` +
		c.Flags().Help()
}

func (c *MeCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("me", flag.ContinueOnError))
	c.global.Register(f)
	return f
}

func (c *MeCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if err := base.Args(flags.Args()); err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Users.Me(ctx)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}
