// pkg/version/version.go
// Package version provides version metadata for the application.
package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/boxprint/boxprint/pkg/artifact"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the current version of boxprint.
	Version = "dev"
	// Commit holds the current version commit of boxprint.
	Commit = "none"
	// BuildDate holds the build date of boxprint.
	BuildDate = "unknown"
	// StartDate holds the start date of boxprint.
	StartDate = time.Now()
)

// Struct returns version information in a structured format.
type Struct struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	BuildDate      string `json:"buildDate"`
	GoVersion      string `json:"goVersion"`
	ArtifactSchema string `json:"artifactSchema"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("Boxprint %s (commit: %s, date: %s, artifacts: v%s)", Version, Commit, BuildDate, artifact.SchemaVersion)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:        Version,
		Commit:         Commit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		ArtifactSchema: artifact.SchemaVersion,
	}
}
