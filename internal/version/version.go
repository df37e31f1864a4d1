// Package version holds build metadata set through -ldflags.
package version

// Set with -ldflags "-X github.com/mandalnilabja/chatrelay/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return Version + " (" + Commit + ", " + BuildDate + ")"
}
