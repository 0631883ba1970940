package build

import (
	"fmt"
	"runtime/debug"
)

// appMajor, appMinor, and appPatch form the semantic version reported by
// Version. Bump these by hand on release.
const (
	appMajor = 0
	appMinor = 1
	appPatch = 0
)

var (
	// Commit is the VCS revision this binary was built from. It is
	// populated in init from the Go module's embedded build info rather
	// than via -ldflags, since this repo has no release tooling that
	// stamps it in.
	Commit string

	// CommitHash is an alias for Commit kept for callers that look for
	// either name.
	CommitHash string

	// GoVersion is the Go toolchain version the running binary was
	// built with.
	GoVersion string
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			Commit = setting.Value
			CommitHash = setting.Value
		}
	}
}

// Version returns the semantic version string for this binary, e.g.
// "0.1.0".
func Version() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}

// RawTags holds the raw build-tag string reported alongside Tags. It is
// populated by -tags at build time in repos with release tooling; this
// repo has none, so it is always empty.
var RawTags string

// Tags returns the list of build tags this binary was compiled with.
// Always empty here since the module carries no build-tag-sensitive
// code paths.
func Tags() []string {
	return nil
}
