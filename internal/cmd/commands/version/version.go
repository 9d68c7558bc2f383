package version

import (
	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	buildversion "github.com/hashicorp-forge/notion-cli/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: notion version

  Print the version of the CLI.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("notion " + buildversion.FullVersion())
	return 0
}
