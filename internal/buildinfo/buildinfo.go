// Package buildinfo holds build metadata for the gaiacommit binary.
// The linker injects values into cmd/gaiacommit; main() forwards them here
// with Set so the version command and the HTTP user agent can read them.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Set stores the build metadata received from linker-injected variables.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

// Version returns the build version string.
func Version() string { return version }

// Commit returns the build commit hash.
func Commit() string { return commit }

// Date returns the build date string.
func Date() string { return date }

// BuiltBy returns the build agent string.
func BuiltBy() string { return builtBy }

// Enrich fills missing metadata from runtime/debug.ReadBuildInfo().
// It overwrites commit when it equals "none" and builtBy when it
// equals "unknown", using VCS revision and Go version respectively.
func Enrich() {
	if commit != "none" && builtBy != "unknown" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if commit == "none" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
		}
	}

	if builtBy == "unknown" {
		builtBy = info.GoVersion
	}
}

// String renders the multi-line block printed by `gaiacommit version`.
func String() string {
	return fmt.Sprintf("gaiacommit version %s\ncommit: %s\nbuilt at: %s\nbuilt by: %s", version, commit, date, builtBy)
}

// UserAgent is sent with every request to the node directory and nodes.
func UserAgent() string {
	return "gaiacommit/" + version
}
