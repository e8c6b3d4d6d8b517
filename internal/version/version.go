// Package version provides build version information for the bot.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service current released version.
// This value can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/jasonholloway125/Trivia-Bot/internal/version.Version=v1.0.0"
var Version = "0.0.0-dev"

// DevVersion is the service current development version.
var DevVersion = Version

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}

// GetMinorVersion extracts the minor version (e.g., "1.2") from a full version string (e.g., "1.2.3").
func GetMinorVersion(version string) string {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return version
	}
	return strings.TrimPrefix(semver.MajorMinor(v), "v")
}
