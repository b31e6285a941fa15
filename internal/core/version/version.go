// Package version provides information about the build version of the binaries.
package version

import (
	"runtime"
	"runtime/debug"
)

// BuildInfo holds version information about the build.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Set via -ldflags "-X 'zayavki/internal/core/version.version=v0.1.0'
// -X 'zayavki/internal/core/version.commit=abcd' -X 'zayavki/internal/core/version.date=2025-06-30'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// readBuildInfo is a seam for tests
var readBuildInfo = debug.ReadBuildInfo

// Get returns the build information. Values not injected with -ldflags fall back
// to the VCS stamp the go tool embeds, when present
func Get() BuildInfo {
	bi := BuildInfo{Version: version, Commit: commit, Date: date, GoVersion: runtime.Version()}
	info, ok := readBuildInfo()
	if !ok {
		return bi
	}
	if bi.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		bi.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if bi.Commit == "none" {
				bi.Commit = s.Value
			}
		case "vcs.time":
			if bi.Date == "unknown" {
				bi.Date = s.Value
			}
		}
	}
	return bi
}
