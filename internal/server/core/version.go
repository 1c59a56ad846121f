package core

import "fmt"

// These are injected at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Version returns a formatted string with version information.
func Version() string {
	return fmt.Sprintf("version %s (commit %s) built on %s", version, commit, date)
}
