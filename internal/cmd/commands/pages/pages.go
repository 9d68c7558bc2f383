package pages

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
	return "Manage pages"
}

func (c *Command) Help() string {
	return `Usage: notion pages <subcommand> [options] [args]

  This command groups subcommands for reading and writing pages.

  Page arguments accept a page ID with or without dashes, or a page URL.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type GetCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *GetCommand) Synopsis() string {
	return "Retrieve a page"
}

func (c *GetCommand) Help() string {
	return `Usage: notion pages get PAGE_ID [options]

  Retrieve a page object with its properties.

  Examples:
    notion pages get 550e8400e29b41d4a716446655440000
    notion pages get https://www.notion.so/team/Roadmap-550e8400e29b41d4a716446655440000 -format pretty` +
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

	pageID, err := pageArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Pages.Get(ctx, pageID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

// ArchiveCommand archives or restores a page.
type ArchiveCommand struct {
	*base.Command

	// Restore selects restoring instead of archiving.
	Restore bool

	global base.GlobalFlags
}

func (c *ArchiveCommand) name() string {
	if c.Restore {
		return "restore"
	}
	return "archive"
}

func (c *ArchiveCommand) Synopsis() string {
	if c.Restore {
		return "Restore an archived page"
	}
	return "Archive a page"
}

func (c *ArchiveCommand) Help() string {
	return fmt.Sprintf(`Usage: notion pages %s PAGE_ID [options]

  %s.`, c.name(), c.Synopsis()) +
		c.Flags().Help()
}

func (c *ArchiveCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet(c.name(), flag.ContinueOnError))
	c.global.Register(f)
	return f
}

func (c *ArchiveCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	pageID, err := pageArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		archive := s.API.Pages.Archive
		if c.Restore {
			archive = s.API.Pages.Restore
		}
		resp, err := archive(ctx, pageID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type PropertyCommand struct {
	*base.Command

	global base.GlobalFlags

	flagStartCursor string
	flagPageSize    int
}

func (c *PropertyCommand) Synopsis() string {
	return "Retrieve a page property"
}

func (c *PropertyCommand) Help() string {
	return `Usage: notion pages property PAGE_ID PROPERTY_ID [options]

  Retrieve one property item of a page. Paginated properties such as
  relations and rollups accept -start-cursor and -page-size.` +
		c.Flags().Help()
}

func (c *PropertyCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("property", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagStartCursor, "start-cursor", "", "Cursor returned by a previous call.")
	f.IntVar(&c.flagPageSize, "page-size", 0, "Number of property items per page (max 100).")

	return f
}

func (c *PropertyCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	if err := base.Args(flags.Args(), "PAGE_ID", "PROPERTY_ID"); err != nil {
		return c.Fail(&c.global, err)
	}
	pageID, err := base.ID("page ID", flags.Args()[0])
	if err != nil {
		return c.Fail(&c.global, err)
	}
	propertyID := flags.Args()[1]

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		lo := api.ListOptions{StartCursor: c.flagStartCursor, PageSize: c.flagPageSize}
		resp, err := s.API.Pages.Property(ctx, pageID, propertyID, lo)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

// pageArg validates a single PAGE_ID argument.
func pageArg(args []string) (string, error) {
	if err := base.Args(args, "PAGE_ID"); err != nil {
		return "", err
	}
	return base.ID("page ID", args[0])
}
