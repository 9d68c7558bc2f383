package databases

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/pkg/api"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage databases"
}

func (c *Command) Help() string {
	return `Usage: notion databases <subcommand> [options] [args]

  This command groups subcommands for reading, querying and writing
  databases.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type GetCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *GetCommand) Synopsis() string {
	return "Retrieve a database"
}

func (c *GetCommand) Help() string {
	return `Usage: notion databases get DATABASE_ID [options]

  Retrieve a database object with its property schema.` +
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

	databaseID, err := databaseArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Databases.Get(ctx, databaseID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type QueryCommand struct {
	*base.Command

	global base.GlobalFlags

	flagFilter      string
	flagFilterFile  string
	flagSort        string
	flagStartCursor string
	flagPageSize    int
	flagAll         bool
}

func (c *QueryCommand) Synopsis() string {
	return "Query a database"
}

func (c *QueryCommand) Help() string {
	return `Usage: notion databases query DATABASE_ID [options]

  Query the pages of a database. Without -all, one page of results is
  returned with its next_cursor.

  Examples:
    notion databases query db123 -filter '{"property": "Status", "select": {"equals": "Done"}}'
    notion databases query db123 -sort '[{"property": "Due", "direction": "ascending"}]' -all` +
		c.Flags().Help()
}

func (c *QueryCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("query", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagFilter, "filter", "", "JSON filter object.")
	f.StringVar(&c.flagFilterFile, "filter-file", "", "Path to a JSON filter file. Takes precedence over -filter.")
	f.StringVar(&c.flagSort, "sort", "", "JSON sort array.")
	f.StringVar(&c.flagStartCursor, "start-cursor", "", "Cursor returned by a previous query.")
	f.IntVar(&c.flagPageSize, "page-size", 0, "Number of results per page (max 100).")
	f.BoolVar(&c.flagAll, "all", false, "Fetch every result, following pagination.")

	return f
}

func (c *QueryCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	databaseID, err := databaseArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}
	in, err := c.input()
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		if c.flagAll {
			results, err := s.API.Databases.QueryAll(ctx, databaseID, in)
			if err != nil {
				return err
			}
			return s.Printer.List(results, false, "")
		}

		resp, err := s.API.Databases.Query(ctx, databaseID, in)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

func (c *QueryCommand) input() (api.QueryInput, error) {
	in := api.QueryInput{StartCursor: c.flagStartCursor, PageSize: c.flagPageSize}

	switch {
	case c.flagFilterFile != "":
		raw, err := os.ReadFile(c.flagFilterFile)
		if err != nil {
			return in, base.UsageError("error reading -filter-file: %v", err)
		}
		if err := api.DecodeJSON("-filter-file", string(raw), &in.Filter); err != nil {
			return in, err
		}
	case c.flagFilter != "":
		if err := api.DecodeJSON("-filter", c.flagFilter, &in.Filter); err != nil {
			return in, err
		}
	}

	if c.flagSort != "" {
		if err := api.DecodeJSON("-sort", c.flagSort, &in.Sorts); err != nil {
			return in, err
		}
	}
	return in, nil
}

type CreateCommand struct {
	*base.Command

	global base.GlobalFlags

	flagParentID   string
	flagTitle      string
	flagProperties string
	flagIcon       string
	flagInline     bool
}

func (c *CreateCommand) Synopsis() string {
	return "Create a database"
}

func (c *CreateCommand) Help() string {
	return `Usage: notion databases create -parent-id PAGE_ID -title TITLE -properties JSON [options]

  Create a database under a page.

  Examples:
    notion databases create -parent-id abc123 -title "Tasks" \
      -properties '{"Name": {"title": {}}, "Done": {"checkbox": {}}}'` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagParentID, "parent-id", "", "(Required) Parent page ID.")
	f.StringVar(&c.flagTitle, "title", "", "(Required) Database title.")
	f.StringVar(&c.flagProperties, "properties", "", "(Required) JSON property schema.")
	f.StringVar(&c.flagIcon, "icon", "", "Icon: an emoji, an image URL or a JSON icon object.")
	f.BoolVar(&c.flagInline, "inline", false, "Create an inline database.")

	return f
}

func (c *CreateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	in, err := c.input(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Databases.Create(ctx, in)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

func (c *CreateCommand) input(args []string) (api.CreateDatabaseInput, error) {
	var in api.CreateDatabaseInput

	if err := base.Args(args); err != nil {
		return in, err
	}
	switch {
	case c.flagParentID == "":
		return in, base.UsageError("-parent-id is required")
	case c.flagTitle == "":
		return in, base.UsageError("-title is required")
	case c.flagProperties == "":
		return in, base.UsageError("-properties is required")
	}

	parentID, err := base.ID("parent ID", c.flagParentID)
	if err != nil {
		return in, err
	}
	if err := api.DecodeJSON("-properties", c.flagProperties, &in.Properties); err != nil {
		return in, err
	}
	if in.Icon, err = api.ParseIcon(c.flagIcon); err != nil {
		return in, err
	}

	in.Parent = api.PageParent(parentID)
	in.Title = api.RichText(c.flagTitle)
	in.IsInline = c.flagInline
	return in, nil
}

type UpdateCommand struct {
	*base.Command

	global base.GlobalFlags

	flagTitle       string
	flagDescription string
	flagProperties  string
}

func (c *UpdateCommand) Synopsis() string {
	return "Update a database's title, description or schema"
}

func (c *UpdateCommand) Help() string {
	return `Usage: notion databases update DATABASE_ID [options]

  Update a database's title, description or property schema. Set a property
  to null in -properties to remove it.` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagTitle, "title", "", "New database title.")
	f.StringVar(&c.flagDescription, "description", "", "New database description.")
	f.StringVar(&c.flagProperties, "properties", "", "JSON property schema updates.")

	return f
}

func (c *UpdateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	databaseID, err := databaseArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	var in api.UpdateDatabaseInput
	if c.flagTitle != "" {
		in.Title = api.RichText(c.flagTitle)
	}
	if c.flagDescription != "" {
		in.Description = api.RichText(c.flagDescription)
	}
	if c.flagProperties != "" {
		if err := api.DecodeJSON("-properties", c.flagProperties, &in.Properties); err != nil {
			return c.Fail(&c.global, err)
		}
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Databases.Update(ctx, databaseID, in)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

// databaseArg validates a single DATABASE_ID argument.
func databaseArg(args []string) (string, error) {
	if err := base.Args(args, "DATABASE_ID"); err != nil {
		return "", err
	}
	return base.ID("database ID", args[0])
}
