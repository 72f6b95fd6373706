// Package version reports which rampsim build produced a batch. It is logged
// at startup so appended rows can be traced back to a generator revision.
//
// Variables are set at build time via ldflags:
//
//	go build -o bin/rampsim -ldflags "\
//	    -X github.com/rickgao/rampsim/internal/version.Version=1.0.0 \
//	    -X github.com/rickgao/rampsim/internal/version.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/rickgao/rampsim/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/rampsim
package version

// Build-time variables (set via ldflags)
var (
	// Version is the semantic version (e.g., "1.0.0")
	Version = "dev"

	// Commit is the git commit hash (short form)
	Commit = "unknown"

	// BuildTime is the UTC build timestamp (ISO 8601)
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
