// Package version provides build version information for crdcat.
//
// Version and Revision are overridden at build time via ldflags. When built
// without ldflags, Revision falls back to the VCS revision recorded in the
// binary's build info.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the crdcat release version.
	Version = "0.0.0-dev"

	// Revision is the VCS revision crdcat was built from.
	Revision = "unknown"
)

func init() {
	if Revision != "unknown" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			Revision = setting.Value
		}
	}
}

// GetUserAgent returns the User-Agent value sent on outbound HTTP requests.
func GetUserAgent() string {
	return fmt.Sprintf("crdcat/%s", Version)
}
