package search

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/pkg/api"
)

type Command struct {
	*base.Command

	global base.GlobalFlags

	flagFilter      string
	flagSort        string
	flagStartCursor string
	flagPageSize    int
	flagAll         bool
	flagQuiet       bool
	flagEditedAfter string
}

func (c *Command) Synopsis() string {
	return "Search pages and databases"
}

func (c *Command) Help() string {
	return `Usage: notion search [QUERY] [options]

  Search the pages and databases shared with the integration by title.
  Without a query, every shared object is listed.

  Examples:
    notion search "meeting notes"
    notion search -filter database -all -q
    notion search roadmap -edited-after "2024-05-01" -sort descending` +
		c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("search", flag.ContinueOnError))
	c.global.Register(f)

	f.StringVar(&c.flagFilter, "filter", "", `Only return objects of this type: "page" or "database".`)
	f.StringVar(&c.flagSort, "sort", "",
		`Sort by last edited time: "ascending" or "descending".`)
	f.StringVar(&c.flagStartCursor, "start-cursor", "", "Cursor returned by a previous search.")
	f.IntVar(&c.flagPageSize, "page-size", 0, "Number of results per page (max 100).")
	f.BoolVar(&c.flagAll, "all", false, "Fetch every result, following pagination.")
	f.BoolVar(&c.flagQuiet, "q", false, "Print only ID<TAB>title per line.")
	f.StringVar(&c.flagEditedAfter, "edited-after", "",
		`Only keep objects last edited after this time, in any common date format such as "2024-05-01" or "May 1, 2024 3pm".`)

	return f
}

func (c *Command) Run(args []string) int {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	in, editedAfter, err := c.input(flags.Args())
	if err != nil {
		return c.Fail(&c.global, err)
	}

	return c.Execute(&c.global, func(ctx context.Context, s *base.Session) error {
		if c.flagAll {
			results, err := s.API.Search.SearchAll(ctx, in)
			if err != nil {
				return err
			}
			if !editedAfter.IsZero() {
				results = api.EditedAfter(results, editedAfter)
			}
			if c.flagQuiet {
				return c.printQuiet(s, results)
			}
			return s.Printer.List(results, false, "")
		}

		resp, err := s.API.Search.Search(ctx, in)
		if err != nil {
			return err
		}
		data := resp.Data
		if !editedAfter.IsZero() {
			data = withResults(data, api.EditedAfter(api.Objects(data["results"]), editedAfter))
		}
		if c.flagQuiet {
			return c.printQuiet(s, api.Objects(data["results"]))
		}
		return s.Printer.Success(data, resp.Cached)
	})
}

func (c *Command) input(args []string) (api.SearchInput, time.Time, error) {
	var (
		in          api.SearchInput
		editedAfter time.Time
	)

	if len(args) > 1 {
		return in, editedAfter, base.UsageError("expected at most one QUERY argument, got %d", len(args))
	}
	if len(args) == 1 {
		in.Query = args[0]
	}

	switch c.flagFilter {
	case "", "page", "database":
		in.Filter = c.flagFilter
	default:
		return in, editedAfter, base.UsageError(`-filter must be "page" or "database", got %q`, c.flagFilter)
	}
	switch c.flagSort {
	case "", "ascending", "descending":
		in.Sort = c.flagSort
	default:
		return in, editedAfter, base.UsageError(`-sort must be "ascending" or "descending", got %q`, c.flagSort)
	}
	in.StartCursor = c.flagStartCursor
	in.PageSize = c.flagPageSize

	if c.flagEditedAfter != "" {
		t, err := dateparse.ParseIn(c.flagEditedAfter, time.UTC)
		if err != nil {
			return in, editedAfter, base.UsageError("invalid -edited-after: %v", err)
		}
		editedAfter = t
	}
	return in, editedAfter, nil
}

func (c *Command) printQuiet(s *base.Session, objects []map[string]any) error {
	var b strings.Builder
	for _, obj := range objects {
		id, _ := obj["id"].(string)
		fmt.Fprintf(&b, "%s\t%s\n", id, api.Title(obj))
	}
	_, err := fmt.Fprint(s.Printer.Out, b.String())
	return err
}

// withResults returns a copy of a list response with its results replaced.
func withResults(data map[string]any, results []map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, r)
	}
	out["results"] = items
	return out
}
