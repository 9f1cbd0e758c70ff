// Package useragent composes the x-goog-api-client header value reported
// on every request, mirroring how the original client library stamps its
// own version and the Go runtime version into the header.
package useragent

import (
	"fmt"
	"runtime"
)

// Version numbers for this module, bumped on release.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// BuildMetadata is appended to the version string for non-release builds
// (e.g. a commit hash injected via -ldflags). It is empty for a release
// build.
var BuildMetadata string

// IsRelease reports whether this is a tagged release build, i.e. whether
// BuildMetadata was left unset.
func IsRelease() bool {
	return BuildMetadata == ""
}

// VersionString returns "vMAJOR.MINOR.PATCH", with "+BuildMetadata"
// appended for non-release builds.
func VersionString() string {
	v := fmt.Sprintf("v%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	if !IsRelease() {
		v += "+" + BuildMetadata
	}
	return v
}

// XGoogAPIClient returns the value to send as the x-goog-api-client header:
// the Go runtime version and this module's version.
func XGoogAPIClient() string {
	return fmt.Sprintf("gl-go/%s gccl/%s", goVersion(), VersionString())
}

func goVersion() string {
	v := runtime.Version()
	if len(v) > 2 && v[:2] == "go" {
		return v[2:]
	}
	return v
}
