// Package version exposes the build's version and commit strings.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/galaxybuds/budspro/internal/version.Version=v1.2.3 \
//	                   -X github.com/galaxybuds/budspro/internal/version.Commit=abc123"
//
// When unset they are filled from the embedded VCS build info, falling
// back to "dev"/"unknown".
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo()
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

func fromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		if modified == "true" {
			revision += "-dirty"
		}
		Commit = revision
	}
}

// Full returns "version (commit: hash)".
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
