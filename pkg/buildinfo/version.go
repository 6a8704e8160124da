// Package buildinfo carries the version stamped into the binary.
//
// Set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/perimeter/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/perimeter/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/perimeter/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/perimeter
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp in a serializable form, as served by the frame
// server's /version endpoint.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// CacheScope namespaces cache keys by version, so a release that changes
// the renderer never serves artifacts drawn by an older one. Development
// builds share one scope.
func CacheScope() string {
	if Version == "dev" {
		return "dev"
	}
	return Version
}

// String returns the build stamp on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
