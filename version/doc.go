// Package version reports the build of the running binary.
//
// Version, git commit and build time are set at link time and fall back to
// the VCS stamp embedded by the Go toolchain:
//
//	go build -ldflags "-X github.com/kbukum/govkit/version.Version=1.0.0"
package version
