// internal/version/version.go

// Package version carries the build version, overridden at link time:
//
//	go build -ldflags "-X kclassify/internal/version.Version=v1.2.3" ./cmd/kclassify
package version

// Version is the release string printed by --version.
var Version = "dev"
