// Package version reports build metadata for convpipe binaries.
//
// Version, commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/convpipe/version.Version=1.0.0" ./cmd/convpipe
//
// Unset values fall back to the VCS stamp in debug.ReadBuildInfo.
package version
