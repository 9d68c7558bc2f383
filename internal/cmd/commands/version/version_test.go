package version

import (
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"

	"github.com/hashicorp-forge/notion-cli/internal/cmd/base"
	buildversion "github.com/hashicorp-forge/notion-cli/internal/version"
)

func TestCommand(t *testing.T) {
	ui := cli.NewMockUi()
	c := &Command{Command: &base.Command{UI: ui}}

	assert.Equal(t, 0, c.Run(nil))
	assert.Equal(t, "notion "+buildversion.FullVersion()+"\n", ui.OutputWriter.String())
}
