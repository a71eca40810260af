package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// CacheFile holds the last check result under .moai/cache.
	CacheFile = "update-check.json"

	// CacheTTL is how long a cached result is reused.
	CacheTTL = 24 * time.Hour
)

// Result is the outcome of an update check. Check never fails; a network or
// parse problem leaves UpdateAvailable false and records Error.
type Result struct {
	Current         string    `json:"current"`
	Latest          string    `json:"latest,omitempty"`
	UpdateAvailable bool      `json:"update_available"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	Error           string    `json:"error,omitempty"`
}

// Checker compares the running version with the latest release.
type Checker struct {
	client    *Client
	cachePath string
	now       func() time.Time
}

// NewChecker returns a checker. An empty cachePath disables result caching.
func NewChecker(client *Client, cachePath string) *Checker {
	return &Checker{client: client, cachePath: cachePath, now: time.Now}
}

// CachePath returns the check cache location for a project root.
func CachePath(root string) string {
	return filepath.Join(root, ".moai", "cache", CacheFile)
}

// Check fetches the latest release and compares it with current.
func (c *Checker) Check(ctx context.Context, current string) *Result {
	res := &Result{Current: current, CheckedAt: c.now()}

	release, err := c.client.Latest(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Latest = release.TagName
	res.ReleaseURL = release.HTMLURL

	newer, err := IsNewer(current, release.TagName)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.UpdateAvailable = newer
	c.save(res)
	return res
}

// Cached returns a fresh cached result for current, or runs Check.
func (c *Checker) Cached(ctx context.Context, current string) *Result {
	if cached := c.Last(current); cached != nil {
		return cached
	}
	return c.Check(ctx, current)
}

// Last returns the cached result for current without touching the network,
// or nil when none is fresh.
func (c *Checker) Last(current string) *Result {
	cached := c.load()
	if cached == nil || cached.Current != current || c.now().Sub(cached.CheckedAt) >= CacheTTL {
		return nil
	}
	return cached
}

func (c *Checker) load() *Result {
	if c.cachePath == "" {
		return nil
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil
	}
	return &res
}

// save only records successful checks.
func (c *Checker) save(res *Result) {
	if c.cachePath == "" {
		return
	}
	_ = writeJSON(c.cachePath, res)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
