// Package version holds build-time version information.
package version

var (
	// Version is the vbatt version. Overridden at build time with
	// -ldflags "-X github.com/pterodyne/linux-userspace-battery/pkg/version.Version=...".
	Version = "dev"
	// GitCommit is the commit the binary was built from.
	GitCommit = ""
)
