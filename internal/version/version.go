// Package version holds the build version of the CLI.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/hashicorp-forge/notion-cli/internal/version.Version=...".
var Version = "0.1.0-dev"

// GitCommit is the commit the binary was built from, when known.
var GitCommit = ""

// FullVersion returns the version with the commit appended when set.
func FullVersion() string {
	if GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
