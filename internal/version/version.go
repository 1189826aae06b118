// Package version holds build-time version information, stamped via
// -ldflags at release time.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version, set via ldflags.
	Version = "dev"
	// Commit is the git commit SHA, set via ldflags.
	Commit = "none"
	// BuildTime is the build timestamp, set via ldflags.
	BuildTime = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Info returns the full version information.
func Info() string {
	return fmt.Sprintf("puter %s\n  commit: %s\n  built: %s\n  go: %s",
		Version, Commit, BuildTime, runtime.Version())
}
