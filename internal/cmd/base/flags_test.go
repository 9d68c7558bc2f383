package base

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlagSet() (*FlagSet, *string, *bool) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := NewFlagSet(fs)
	name := f.String("name", "x", "The `name` to use.")
	verbose := f.Bool("v", false, "Verbose.")
	return f, name, verbose
}

func TestFlagSet_Parse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantVal string
		verbose bool
	}{
		{
			name:    "flags first",
			args:    []string{"-name", "a", "-v", "id"},
			want:    []string{"id"},
			wantVal: "a",
			verbose: true,
		},
		{
			name:    "flags after positional",
			args:    []string{"id", "-name=b", "other", "-v"},
			want:    []string{"id", "other"},
			wantVal: "b",
			verbose: true,
		},
		{
			name:    "double dash",
			args:    []string{"id", "--", "-v", "-name"},
			want:    []string{"id", "-v", "-name"},
			wantVal: "x",
		},
		{
			name:    "no args",
			want:    nil,
			wantVal: "x",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, name, verbose := testFlagSet()

			require.NoError(t, f.Parse(tc.args))
			assert.Equal(t, tc.want, f.Args())
			assert.Equal(t, tc.wantVal, *name)
			assert.Equal(t, tc.verbose, *verbose)
		})
	}
}

func TestFlagSet_ParseError(t *testing.T) {
	f, _, _ := testFlagSet()

	assert.Error(t, f.Parse([]string{"id", "-unknown"}))
	assert.Error(t, f.Parse([]string{"-name"}))
}

func TestFlagSet_Help(t *testing.T) {
	f, _, _ := testFlagSet()

	want := "\n\nOptions:\n" +
		"\n  -name=<name>\n    The name to use.\n    Default: x\n" +
		"\n  -v\n    Verbose."
	assert.Equal(t, want, f.Help())
}

func TestFlagSet_HelpEmpty(t *testing.T) {
	f := NewFlagSet(flag.NewFlagSet("empty", flag.ContinueOnError))
	assert.Equal(t, "", f.Help())
}
