package comments

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
	return "List and create comments"
}

func (c *Command) Help() string {
	return `Usage: notion comments <subcommand> [options] [args]

  This command groups subcommands for reading and writing comments.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}

type ListCommand struct {
	*base.Command

	global base.GlobalFlags

	flagBlockID     string
	flagStartCursor string
	flagPageSize    int
	flagAll         bool
}

func (c *ListCommand) Synopsis() string {
	return "List comments on a page or block"
}

func (c *ListCommand) Help() string {
	return `Usage: notion comments list -block-id ID [options]

  List the open comments on a page or block.` +
		c.Flags().Help()
}

func (c *ListCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("list", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagBlockID, "block-id", "", "(Required) Page or block ID.")
	f.StringVar(&c.flagStartCursor, "start-cursor", "", "Cursor returned by a previous call.")
	f.IntVar(&c.flagPageSize, "page-size", 0, "Number of results per page (max 100).")
	f.BoolVar(&c.flagAll, "all", false, "Fetch every comment, following pagination.")

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
	if c.flagBlockID == "" {
		return c.Fail(&c.global, base.UsageError("-block-id is required"))
	}
	blockID, err := base.ID("block ID", c.flagBlockID)
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		if c.flagAll {
			results, err := s.API.Comments.ListAll(ctx, blockID)
			if err != nil {
				return err
			}
			return s.Printer.List(results, false, "")
		}

		lo := api.ListOptions{StartCursor: c.flagStartCursor, PageSize: c.flagPageSize}
		resp, err := s.API.Comments.List(ctx, blockID, lo)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

type CreateCommand struct {
	*base.Command

	global base.GlobalFlags

	flagPageID       string
	flagText         string
	flagDiscussionID string
}

func (c *CreateCommand) Synopsis() string {
	return "Comment on a page or reply to a discussion"
}

func (c *CreateCommand) Help() string {
	return `Usage: notion comments create (-page-id ID | -discussion-id ID) -text TEXT [options]

  Start a new discussion on a page, or reply to an existing discussion.` +
		c.Flags().Help()
}

func (c *CreateCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagPageID, "page-id", "", "Page to comment on.")
	f.StringVar(&c.flagText, "text", "", "(Required) Comment text.")
	f.StringVar(&c.flagDiscussionID, "discussion-id", "", "Discussion to reply to.")

	return f
}

func (c *CreateCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	pageID, err := c.validate(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		resp, err := s.API.Comments.CreateText(ctx, pageID, c.flagText, c.flagDiscussionID)
		if err != nil {
			return err
		}
		return s.Printer.Success(resp.Data, resp.Cached)
	})
}

func (c *CreateCommand) validate(args []string) (string, error) {
	if err := base.Args(args); err != nil {
		return "", err
	}
	if c.flagText == "" {
		return "", base.UsageError("-text is required")
	}
	if c.flagPageID == "" && c.flagDiscussionID == "" {
		return "", base.UsageError("one of -page-id or -discussion-id is required")
	}
	if c.flagPageID == "" {
		return "", nil
	}
	return base.ID("page ID", c.flagPageID)
}
