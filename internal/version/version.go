// Package version holds build information injected via -ldflags:
//
//	go build -ldflags "-X genomecmp/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

// Info returns the string printed by --version.
func Info() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, runtime.Version())
}
