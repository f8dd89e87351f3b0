// Package version carries build identification stamped at link time, e.g.
//
//	go build -ldflags "-X github.com/repolens/repolens/internal/version.Version=v0.2.0"
package version

import "fmt"

var (
	// Version is the release tag; defaults mark a local build.
	Version = "0.1.0-dev"
	// Commit is the short git hash of the build.
	Commit = "none"
	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)

// Full renders the string shown by the version command.
func Full() string {
	return fmt.Sprintf("repolens %s (commit %s, built %s)", Version, Commit, BuildDate)
}
