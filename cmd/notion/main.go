package main

import (
	"os"

	"github.com/hashicorp-forge/notion-cli/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
