package pages

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/pkg/api"
)

type CreateCommand struct {
	*base.Command

	global base.GlobalFlags

	flagParentID   string
	flagParentType string
	flagTitle      string
	flagProperties string
	flagContent    string
	flagIcon       string
	flagCover      string
}

func (c *CreateCommand) Synopsis() string {
	return "Create a page"
}

func (c *CreateCommand) Help() string {
	return `Usage: notion pages create -parent-id ID -title TITLE [options]

  Create a page under a page or in a database. Under a database parent the
  title is written to the "Name" property.

  Examples:
    notion pages create -parent-id abc123 -title "Notes" -content "First line"

    notion pages create -parent-id db123 -parent-type database -title "Task" \
      -properties '{"Status": {"select": {"name": "Todo"}}}'

    notion pages create -parent-id abc123 -title "Doc" -icon 📄` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagParentID, "parent-id", "", "(Required) Parent page or database ID.")
	f.StringVar(&c.flagParentType, "parent-type", "page", `Type of parent: "page" or "database".`)
	f.StringVar(&c.flagTitle, "title", "", "(Required) Page title.")
	f.StringVar(&c.flagProperties, "properties", "", "JSON properties object.")
	f.StringVar(&c.flagContent, "content", "",
		"JSON array of block children, or plain text written as one paragraph per line.")
	f.StringVar(&c.flagIcon, "icon", "", "Icon: an emoji, an image URL or a JSON icon object.")
	f.StringVar(&c.flagCover, "cover", "", "Cover: an image URL or a JSON file object.")

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
		resp, err := s.API.Pages.Create(ctx, in)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

func (c *CreateCommand) input(args []string) (api.CreatePageInput, error) {
	var in api.CreatePageInput

	if err := base.Args(args); err != nil {
		return in, err
	}
	if c.flagParentID == "" {
		return in, base.UsageError("-parent-id is required")
	}
	if c.flagTitle == "" {
		return in, base.UsageError("-title is required")
	}
	parentID, err := base.ID("parent ID", c.flagParentID)
	if err != nil {
		return in, err
	}

	in.Properties = map[string]any{}
	if c.flagProperties != "" {
		if err := api.DecodeJSON("-properties", c.flagProperties, &in.Properties); err != nil {
			return in, err
		}
	}

	switch c.flagParentType {
	case "page":
		in.Parent = api.PageParent(parentID)
		in.Properties["title"] = api.TitleProperty(c.flagTitle)
	case "database":
		in.Parent = api.DatabaseParent(parentID)
		in.Properties["Name"] = api.TitleProperty(c.flagTitle)
	default:
		return in, base.UsageError(`-parent-type must be "page" or "database", got %q`, c.flagParentType)
	}

	if c.flagContent != "" {
		if in.Children, err = api.ParseBlocks("-content", c.flagContent, "paragraph"); err != nil {
			return in, err
		}
	}
	if in.Icon, err = api.ParseIcon(c.flagIcon); err != nil {
		return in, err
	}
	if in.Cover, err = api.ParseCover(c.flagCover); err != nil {
		return in, err
	}
	return in, nil
}

type UpdateCommand struct {
	*base.Command

	global base.GlobalFlags

	flagProperties string
	flagIcon       string
	flagCover      string
}

func (c *UpdateCommand) Synopsis() string {
	return "Update a page's properties, icon or cover"
}

func (c *UpdateCommand) Help() string {
	return `Usage: notion pages update PAGE_ID [options]

  Update a page's properties, icon or cover. Properties not named are left
  unchanged.

  Examples:
    notion pages update abc123 -properties '{"Status": {"select": {"name": "Done"}}}'
    notion pages update abc123 -icon ✅` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagProperties, "properties", "", "JSON properties object to update.")
	f.StringVar(&c.flagIcon, "icon", "", "Icon: an emoji, an image URL or a JSON icon object.")
	f.StringVar(&c.flagCover, "cover", "", "Cover: an image URL or a JSON file object.")

	return f
}

func (c *UpdateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	pageID, err := pageArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	var in api.UpdatePageInput
	if c.flagProperties != "" {
		if err := api.DecodeJSON("-properties", c.flagProperties, &in.Properties); err != nil {
			return c.Fail(&c.global, err)
		}
	}
	if in.Icon, err = api.ParseIcon(c.flagIcon); err != nil {
		return c.Fail(&c.global, err)
	}
	if in.Cover, err = api.ParseCover(c.flagCover); err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Pages.Update(ctx, pageID, in)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type MoveCommand struct {
	*base.Command

	global base.GlobalFlags

	flagToPage      string
	flagToDatabase  string
	flagToWorkspace bool
}

func (c *MoveCommand) Synopsis() string {
	return "Move a page to a new parent"
}

func (c *MoveCommand) Help() string {
	return `Usage: notion pages move PAGE_ID (-to-page ID | -to-database ID | -to-workspace)

  Move a page under another page, into a database or to the workspace top
  level. Exactly one destination is required.` +
		c.Flags().Help()
}

func (c *MoveCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("move", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagToPage, "to-page", "", "Move under this page.")
	f.StringVar(&c.flagToDatabase, "to-database", "", "Move into this database.")
	f.BoolVar(&c.flagToWorkspace, "to-workspace", false, "Move to the workspace top level.")

	return f
}

func (c *MoveCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	pageID, err := pageArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}
	parent, err := c.destination()
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Pages.Move(ctx, pageID, parent)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

func (c *MoveCommand) destination() (map[string]any, error) {
	specified := 0
	for _, set := range []bool{c.flagToPage != "", c.flagToDatabase != "", c.flagToWorkspace} {
		if set {
			specified++
		}
	}
	switch specified {
	case 0:
		return nil, base.UsageError("must specify one of: -to-page, -to-database, or -to-workspace")
	case 1:
	default:
		return nil, base.UsageError(
			"cannot specify multiple destinations; use only one of: -to-page, -to-database, or -to-workspace")
	}

	switch {
	case c.flagToPage != "":
		id, err := base.ID("destination page ID", c.flagToPage)
		if err != nil {
			return nil, err
		}
		return api.PageParent(id), nil
	case c.flagToDatabase != "":
		id, err := base.ID("destination database ID", c.flagToDatabase)
		if err != nil {
			return nil, err
		}
		return api.DatabaseParent(id), nil
	default:
		return api.WorkspaceParent(), nil
	}
}
