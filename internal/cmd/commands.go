package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/blocks"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/cache"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/comments"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/databases"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/pages"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/search"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/users"
	"github.com/hashicorp-forge/notion-cli/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	Commands = NewCommands(&base.Command{Log: log, UI: ui})
}

// NewCommands returns the command factories sharing b.
func NewCommands(b *base.Command) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"pages": func() (cli.Command, error) {
			return &pages.Command{Command: b}, nil
		},
		"pages get": func() (cli.Command, error) {
			return &pages.GetCommand{Command: b}, nil
		},
		"pages create": func() (cli.Command, error) {
			return &pages.CreateCommand{Command: b}, nil
		},
		"pages update": func() (cli.Command, error) {
			return &pages.UpdateCommand{Command: b}, nil
		},
		"pages archive": func() (cli.Command, error) {
			return &pages.ArchiveCommand{Command: b}, nil
		},
		"pages restore": func() (cli.Command, error) {
			return &pages.ArchiveCommand{Command: b, Restore: true}, nil
		},
		"pages move": func() (cli.Command, error) {
			return &pages.MoveCommand{Command: b}, nil
		},
		"pages property": func() (cli.Command, error) {
			return &pages.PropertyCommand{Command: b}, nil
		},
		"pages markdown": func() (cli.Command, error) {
			return &pages.MarkdownCommand{Command: b}, nil
		},
		"pages open": func() (cli.Command, error) {
			return &pages.OpenCommand{Command: b}, nil
		},
		"pages replace": func() (cli.Command, error) {
			return &pages.ReplaceCommand{Command: b}, nil
		},

		"databases": func() (cli.Command, error) {
			return &databases.Command{Command: b}, nil
		},
		"databases get": func() (cli.Command, error) {
			return &databases.GetCommand{Command: b}, nil
		},
		"databases query": func() (cli.Command, error) {
			return &databases.QueryCommand{Command: b}, nil
		},
		"databases create": func() (cli.Command, error) {
			return &databases.CreateCommand{Command: b}, nil
		},
		"databases update": func() (cli.Command, error) {
			return &databases.UpdateCommand{Command: b}, nil
		},

		"blocks": func() (cli.Command, error) {
			return &blocks.Command{Command: b}, nil
		},
		"blocks get": func() (cli.Command, error) {
			return &blocks.GetCommand{Command: b}, nil
		},
		"blocks children": func() (cli.Command, error) {
			return &blocks.ChildrenCommand{Command: b}, nil
		},
		"blocks append": func() (cli.Command, error) {
			return &blocks.AppendCommand{Command: b}, nil
		},
		"blocks update": func() (cli.Command, error) {
			return &blocks.UpdateCommand{Command: b}, nil
		},
		"blocks delete": func() (cli.Command, error) {
			return &blocks.DeleteCommand{Command: b}, nil
		},

		"users": func() (cli.Command, error) {
			return &users.Command{Command: b}, nil
		},
		"users list": func() (cli.Command, error) {
			return &users.ListCommand{Command: b}, nil
		},
		"users get": func() (cli.Command, error) {
			return &users.GetCommand{Command: b}, nil
		},
		"users me": func() (cli.Command, error) {
			return &users.MeCommand{Command: b}, nil
		},

		"search": func() (cli.Command, error) {
			return &search.Command{Command: b}, nil
		},

		"comments": func() (cli.Command, error) {
			return &comments.Command{Command: b}, nil
		},
		"comments list": func() (cli.Command, error) {
			return &comments.ListCommand{Command: b}, nil
		},
		"comments create": func() (cli.Command, error) {
			return &comments.CreateCommand{Command: b}, nil
		},

		"cache": func() (cli.Command, error) {
			return &cache.Command{Command: b}, nil
		},
		"cache clear": func() (cli.Command, error) {
			return &cache.ClearCommand{Command: b}, nil
		},
		"cache info": func() (cli.Command, error) {
			return &cache.InfoCommand{Command: b}, nil
		},

		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
