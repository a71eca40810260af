// Package version provides build-time version information for the moai CLI.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name is the binary name used in version strings and User-Agent headers.
const Name = "moai"

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X github.com/modu-ai/moai-adk/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// TemplateVersion is bumped whenever the embedded project templates change.
// It is written to .moai/config/config.json so update can tell stale projects apart.
const TemplateVersion = "1.2.0"

// Short returns the version string (e.g., "v1.2.3" or "dev").
func Short() string {
	return Version
}

// IsDev reports whether the binary was built without a release version.
func IsDev() bool {
	v := strings.TrimSpace(Version)
	return v == "" || v == "dev" || v == "unknown"
}

// Info returns a single-line version string with commit and build info.
// Format: "moai v1.2.3 (commit: abc1234, built: 2024-01-15T10:30:00Z, go: go1.24.x)"
func Info() string {
	commitShort := Commit
	if len(commitShort) > 7 {
		commitShort = commitShort[:7]
	}
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, commitShort, BuildDate, runtime.Version())
}

// Full returns a multi-line verbose version output.
func Full() string {
	return fmt.Sprintf(`%s %s
  Commit:     %s
  Built:      %s
  Templates:  %s
  Go version: %s
  OS/Arch:    %s/%s`,
		Name, Version, Commit, BuildDate, TemplateVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
