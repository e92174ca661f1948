// Package version holds build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/NERVsystems/osmingest/pkg/version.BuildVersion=..."
var (
	BuildVersion = "0.1.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// String returns a human readable version line
func String() string {
	return fmt.Sprintf("osmingest %s (commit %s, built %s, %s)", BuildVersion, BuildCommit, BuildDate, runtime.Version())
}
