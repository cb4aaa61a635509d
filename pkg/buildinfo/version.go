// Package buildinfo carries version information stamped in at build time:
//
//	go build -ldflags "-X github.com/matzehuels/floorplan/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/floorplan/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/floorplan/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/floorplan
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns a multi-line summary, used by the server's /healthz body
// and the CLI's verbose banner.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Short returns "<version> (<commit>)".
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

// Template is cobra's --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
