package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/dotstow/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/dotstow/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/dotstow/internal/version.Date={{.Date}}
)

// String formats the build information for `dotstow version`
func String() string {
	return fmt.Sprintf("dotstow version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
