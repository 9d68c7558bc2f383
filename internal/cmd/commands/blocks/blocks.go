package blocks

import (
	"context"
	"flag"
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/pkg/api"
	"github.com/hashicorp-forge/notion-cli/pkg/client"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Manage blocks"
}

func (c *Command) Help() string {
	return `Usage: notion blocks <subcommand> [options] [args]

  This command groups subcommands for reading and writing blocks. A page ID
  may be used wherever a block ID is expected to address the page's
  top-level content.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type GetCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *GetCommand) Synopsis() string {
	return "Retrieve a block"
}

func (c *GetCommand) Help() string {
	return `Usage: notion blocks get BLOCK_ID [options]

  Retrieve a block object.` +
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

	blockID, err := blockArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Blocks.Get(ctx, blockID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type ChildrenCommand struct {
	*base.Command

	global base.GlobalFlags

	flagRecursive   bool
	flagMaxDepth    int
	flagStartCursor string
	flagPageSize    int
	flagAll         bool
}

func (c *ChildrenCommand) Synopsis() string {
	return "List the children of a block"
}

func (c *ChildrenCommand) Help() string {
	return `Usage: notion blocks children BLOCK_ID [options]

  List the children of a block or page. With -recursive, every nested block
  is fetched and attached under a "children" key; with -format markdown the
  tree is rendered as a document.

  Examples:
    notion blocks children abc123 -recursive -format markdown
    notion blocks children abc123 -recursive -max-depth 1` +
		c.Flags().Help()
}

func (c *ChildrenCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("children", flag.ContinueOnError))
	c.global.Register(f)

	f.BoolVar(&c.flagRecursive, "recursive", false, "Fetch nested children of every block.")
	f.IntVar(&c.flagMaxDepth, "max-depth", -1,
		"With -recursive, the deepest nesting level to fetch. 0 fetches top-level blocks only; -1 is unlimited.")
	f.StringVar(&c.flagStartCursor, "start-cursor", "", "Cursor returned by a previous call.")
	f.IntVar(&c.flagPageSize, "page-size", 0, "Number of results per page (max 100).")
	f.BoolVar(&c.flagAll, "all", false, "Fetch every child, following pagination.")

	return f
}

func (c *ChildrenCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	blockID, err := blockArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		if c.flagRecursive || c.flagAll {
			opts := api.ChildrenOptions{Recursive: c.flagRecursive, MaxDepth: c.flagMaxDepth}
			results, err := s.API.Blocks.ChildrenAll(ctx, blockID, opts)
			if err != nil {
				return err
			}
			return s.Printer.List(results, false, "")
		}

		lo := api.ListOptions{StartCursor: c.flagStartCursor, PageSize: c.flagPageSize}
		resp, err := s.API.Blocks.Children(ctx, blockID, lo)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type AppendCommand struct {
	*base.Command

	global base.GlobalFlags

	flagContent string
	flagType    string
	flagAfter   string
}

func (c *AppendCommand) Synopsis() string {
	return "Append children to a block"
}

func (c *AppendCommand) Help() string {
	return `Usage: notion blocks append BLOCK_ID -content CONTENT [options]

  Append blocks to a block or page. Content is a JSON array of block
  objects, or plain text where every line becomes a block of -type.

  Examples:
    notion blocks append abc123 -content "Buy milk" -type to-do
    notion blocks append abc123 -content '[{"type": "divider", "divider": {}}]'` +
		c.Flags().Help()
}

func (c *AppendCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("append", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagContent, "content", "", "(Required) JSON array of blocks, or plain text.")
	f.StringVar(&c.flagType, "type", "paragraph",
		`Block type for plain text content, such as "heading 2", "bullet" or "to-do".`)
	f.StringVar(&c.flagAfter, "after", "", "Insert after this sibling block instead of at the end.")

	return f
}

func (c *AppendCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	blockID, err := blockArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}
	in, err := c.input()
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Blocks.Append(ctx, blockID, in)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

func (c *AppendCommand) input() (api.AppendInput, error) {
	var in api.AppendInput

	if c.flagContent == "" {
		return in, base.UsageError("-content is required")
	}
	children, err := api.ParseBlocks("-content", c.flagContent, c.flagType)
	if err != nil {
		return in, err
	}
	in.Children = children

	if c.flagAfter != "" {
		if in.After, err = base.ID("-after block ID", c.flagAfter); err != nil {
			return in, err
		}
	}
	return in, nil
}

type UpdateCommand struct {
	*base.Command

	global base.GlobalFlags

	flagContent  string
	flagText     string
	flagArchived string
}

func (c *UpdateCommand) Synopsis() string {
	return "Update a block"
}

func (c *UpdateCommand) Help() string {
	return `Usage: notion blocks update BLOCK_ID [options]

  Update a block's content. -content takes the JSON body of the block type,
  for example '{"paragraph": {"rich_text": [...]}}'. -text replaces the text
  of a text block, keeping its type.` +
		c.Flags().Help()
}

func (c *UpdateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("update", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagContent, "content", "", "JSON block data to update.")
	f.StringVar(&c.flagText, "text", "", "Replace the plain text of a text block.")
	f.StringVar(&c.flagArchived, "archived", "", `Set to "true" to archive or "false" to restore.`)

	return f
}

func (c *UpdateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	blockID, err := blockArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	var (
		data     map[string]any
		archived *bool
	)
	switch {
	case c.flagContent != "" && c.flagText != "":
		return c.Fail(&c.global, base.UsageError("-content and -text are mutually exclusive"))
	case c.flagContent != "":
		if err := api.DecodeJSON("-content", c.flagContent, &data); err != nil {
			return c.Fail(&c.global, err)
		}
	case c.flagText == "" && c.flagArchived == "":
		return c.Fail(&c.global, base.UsageError("one of -content, -text or -archived is required"))
	}
	switch c.flagArchived {
	case "":
	case "true", "false":
		v := c.flagArchived == "true"
		archived = &v
	default:
		return c.Fail(&c.global, base.UsageError(`-archived must be "true" or "false"`))
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		if c.flagText != "" {
			current, err := s.API.Blocks.Get(ctx, blockID, client.WithCache(false))
			if err != nil {
				return err
			}
			blockType, _ := current.Data["type"].(string)
			block, err := api.TextBlock(blockType, c.flagText)
			if err != nil {
				return err
			}
			data = map[string]any{blockType: block[blockType]}
		}

		resp, err := s.API.Blocks.Update(ctx, blockID, data, archived)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type DeleteCommand struct {
	*base.Command

	global base.GlobalFlags
}

func (c *DeleteCommand) Synopsis() string {
	return "Delete (archive) a block"
}

func (c *DeleteCommand) Help() string {
	return `Usage: notion blocks delete BLOCK_ID [options]

  Move a block to the trash.` +
		c.Flags().Help()
}

func (c *DeleteCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("delete", flag.ContinueOnError))
	c.global.Register(f)
	return f
}

func (c *DeleteCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	blockID, err := blockArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Blocks.Delete(ctx, blockID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

// blockArg validates a single BLOCK_ID argument.
func blockArg(args []string) (string, error) {
	if err := base.Args(args, "BLOCK_ID"); err != nil {
		return "", err
	}
	return base.ID("block ID", args[0])
}
