package pages

import (
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/browser"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/pkg/markdown"
)

type MarkdownCommand struct {
	*base.Command

	global base.GlobalFlags

	flagOutput string
}

func (c *MarkdownCommand) Synopsis() string {
	return "Render a page's content as Markdown"
}

func (c *MarkdownCommand) Help() string {
	return `Usage: notion pages markdown PAGE_ID [options]

  Fetch the full block tree of a page and render it as Markdown.` +
		c.Flags().Help()
}

func (c *MarkdownCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("markdown", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagOutput, "output", "", "Write the Markdown to this file instead of stdout.")

	return f
}

func (c *MarkdownCommand) Run(args []string) int {
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
		blocks, err := s.API.Pages.Content(ctx, pageID)
		if err != nil {
			return err
		}

		if c.flagOutput == "" {
			return s.Printer.Markdown(blocks)
		}

		text, err := markdown.Render(blocks)
		if err != nil {
			return fmt.Errorf("error rendering markdown: %w", err)
		}
		if err := os.WriteFile(c.flagOutput, []byte(text), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", c.flagOutput, err)
		}
		s.Log.Info("wrote markdown", "path", c.flagOutput, "blocks", len(blocks))
		return s.Printer.Value(map[string]any{"path": c.flagOutput, "blocks": len(blocks)})
	})
}

type OpenCommand struct {
	*base.Command

	// OpenURL opens a URL. Default: browser.OpenURL
	OpenURL func(url string) error

	global base.GlobalFlags

	flagPrint bool
}

func (c *OpenCommand) Synopsis() string {
	return "Open a page in the browser"
}

func (c *OpenCommand) Help() string {
	return `Usage: notion pages open PAGE_ID [options]

  Look up a page's URL and open it in the default browser.` +
		c.Flags().Help()
}

func (c *OpenCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("open", flag.ContinueOnError))
	c.global.Register(f)

	f.BoolVar(&c.flagPrint, "print", false, "Print the URL without opening it.")

	return f
}

func (c *OpenCommand) Run(args []string) int {
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

		url, _ := resp.Data["url"].(string)
		if url == "" {
			url = "https://www.notion.so/" + strings.ReplaceAll(pageID, "-", "")
		}

		if !c.flagPrint {
			open := c.OpenURL
			if open == nil {
				open = browser.OpenURL
			}
			s.Log.Debug("opening page", "url", url)
			if err := open(url); err != nil {
				return fmt.Errorf("error opening browser: %w", err)
			}
		}
		return s.Printer.Value(map[string]any{"id": pageID, "url": url, "opened": !c.flagPrint})
	})
}

type ReplaceCommand struct {
	*base.Command

	global base.GlobalFlags

	flagPattern     string
	flagReplacement string
	flagIgnoreCase  bool
	flagLiteral     bool
	flagDryRun      bool
}

func (c *ReplaceCommand) Synopsis() string {
	return "Find and replace text in a page"
}

func (c *ReplaceCommand) Help() string {
	return `Usage: notion pages replace PAGE_ID -pattern REGEX -replacement TEXT [options]

  Replace every match of a regular expression in the text blocks of a page,
  including nested blocks. The replacement may reference capture groups as
  $1 or ${name}. Formatting of rewritten text runs is preserved.

  Examples:
    notion pages replace abc123 -pattern 'Q(\d) 2023' -replacement 'Q$1 2024' -dry-run` +
		c.Flags().Help()
}

func (c *ReplaceCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("replace", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagPattern, "pattern", "", "(Required) Regular expression to find.")
	f.StringVar(&c.flagReplacement, "replacement", "", "Replacement text.")
	f.BoolVar(&c.flagIgnoreCase, "ignore-case", false, "Match case-insensitively.")
	f.BoolVar(&c.flagLiteral, "literal", false, "Treat the pattern as literal text.")
	f.BoolVar(&c.flagDryRun, "dry-run", false, "Count matching blocks without changing them.")

	return f
}

func (c *ReplaceCommand) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	pageID, err := pageArg(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}
	re, err := c.compile()
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		result, err := s.API.Pages.Replace(ctx, pageID, re, c.flagReplacement, c.flagDryRun)
		if err != nil {
			return err
		}
		return s.Printer.Value(result)
	})
}

func (c *ReplaceCommand) compile() (*regexp.Regexp, error) {
	if c.flagPattern == "" {
		return nil, base.UsageError("-pattern is required")
	}

	pattern := c.flagPattern
	if c.flagLiteral {
		pattern = regexp.QuoteMeta(pattern)
	}
	if c.flagIgnoreCase {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, base.UsageError("invalid -pattern: %v", err)
	}
	return re, nil
}
