package base

import (
	"flag"
	"fmt"
	"strings"
)

// FlagSet wraps a standard flag set with help text rendering. Unlike the
// standard flag set, flags may follow positional arguments.
type FlagSet struct {
	*flag.FlagSet

	args []string
}

// NewFlagSet wraps f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Parse parses flags anywhere in args. Everything after "--" is positional.
func (f *FlagSet) Parse(args []string) error {
	f.args = nil
	for {
		if err := f.FlagSet.Parse(args); err != nil {
			return err
		}
		rest := f.FlagSet.Args()
		if len(rest) == 0 {
			return nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			f.args = append(f.args, rest...)
			return nil
		}
		f.args = append(f.args, rest[0])
		args = rest[1:]
	}
}

// Args returns the positional arguments.
func (f *FlagSet) Args() []string {
	return f.args
}

// Help renders the options section of a command's help text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	f.VisitAll(func(fl *flag.Flag) {
		if b.Len() == 0 {
			b.WriteString("\n\nOptions:\n")
		}
		name, usage := flag.UnquoteUsage(fl)
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if name != "" {
			fmt.Fprintf(&b, "=<%s>", name)
		}
		b.WriteString("\n")
		for _, line := range strings.Split(usage, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
		if fl.DefValue != "" && fl.DefValue != "false" && fl.DefValue != "0" {
			fmt.Fprintf(&b, "    Default: %s\n", fl.DefValue)
		}
	})
	return strings.TrimRight(b.String(), "\n")
}
