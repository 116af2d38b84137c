// Package version carries build metadata injected with -ldflags -X.
package version

import "fmt"

var (
	// Version is the release tag, e.g. v0.3.0.
	Version = "dev"
	// Commit is the short git hash of the build.
	Commit = "unknown"
	// BuildDate is an RFC 3339 build timestamp.
	BuildDate = "unknown"
)

// String renders the metadata block printed by `terralink version`.
func String() string {
	return fmt.Sprintf("terralink %s\ncommit: %s\nbuilt: %s\n", Version, Commit, BuildDate)
}
