// Package buildinfo holds the version identifiers stamped in at build
// time with -ldflags.
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
