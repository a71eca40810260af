package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SnapshotFile is the cache snapshot name under .moai/cache.
const SnapshotFile = "context-cache.json"

const snapshotVersion = "1"

type snapshotEntry struct {
	Key   string `json:"key"`
	Entry Entry  `json:"entry"`
}

// snapshot is the on-disk representation of the cache, oldest entry first.
type snapshot struct {
	Version string          `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Entries []snapshotEntry `json:"entries"`
}

// SnapshotPath returns the snapshot location for a project root.
func SnapshotPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".moai", "cache", SnapshotFile)
}

// Save writes the cache contents to path, creating the directory if needed.
// The file is replaced atomically.
func (c *ContextCache) Save(path string) error {
	c.mu.Lock()
	snap := snapshot{Version: snapshotVersion, SavedAt: c.now()}
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok {
			snap.Entries = append(snap.Entries, snapshotEntry{Key: key, Entry: *e})
		}
	}
	c.mu.Unlock()

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, raw)
}

// writeAtomic replaces path through a temp file in the same directory, so a
// concurrent reader sees either the old snapshot or the new one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load restores entries from path. A missing or corrupt file leaves the cache
// untouched without error. Expired entries are skipped.
func (c *ContextCache) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	if snap.Version != snapshotVersion {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, se := range snap.Entries {
		e := se.Entry
		if c.isExpired(&e, now) || e.size() > c.maxBytes {
			continue
		}
		c.put(se.Key, &e)
	}
	return nil
}
