package version

import (
	"fmt"
	"runtime"
	"time"
)

// Set at build time with -ldflags "-X github.com/MrSnakeDoc/deroute/internal/version.Version=v0.1.0".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)

// String renders the build information on one line.
func String() string {
	return fmt.Sprintf("deroute %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
