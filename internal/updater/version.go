package updater

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseVersion parses "v1.2.3", "1.2.3" or "v1.2.3-rc.1". Development builds
// are rejected.
func ParseVersion(s string) (*semver.Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty version string")
	}
	if s == "dev" || s == "unknown" {
		return nil, fmt.Errorf("development version")
	}
	v, err := semver.NewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid version format %q: %w", s, err)
	}
	return v, nil
}

// IsNewer reports whether latest is newer than current.
func IsNewer(current, latest string) (bool, error) {
	cur, err := ParseVersion(current)
	if err != nil {
		return false, err
	}
	lat, err := ParseVersion(latest)
	if err != nil {
		return false, err
	}
	return cur.LessThan(lat), nil
}
