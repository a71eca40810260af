package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modu-ai/moai-adk/internal/phase"
)

func TestSnapshotPath(t *testing.T) {
	got := SnapshotPath("/work")
	want := filepath.Join("/work", ".moai", "cache", SnapshotFile)
	if got != want {
		t.Errorf("SnapshotPath = %q, want %q", got, want)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := SnapshotPath(t.TempDir())

	c := New(Config{MaxEntries: 5})
	_ = c.Put("a", Entry{Content: "A", PhaseTag: phase.Red, Skills: []string{"tdd"}, Excluded: []string{"lang-go"}, Truncated: true})
	_ = c.Put("b", Entry{Content: "B", PhaseTag: phase.Sync})
	if err := c.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	c2 := New(Config{MaxEntries: 5})
	if err := c2.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c2.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c2.Len())
	}
	keys := c2.Keys()
	if keys[0] != "a" || keys[1] != "b" {
		t.Errorf("LRU order not preserved: %v", keys)
	}
	e, _ := c2.Peek("a")
	if e.PhaseTag != phase.Red || len(e.Skills) != 1 || e.Skills[0] != "tdd" {
		t.Errorf("unexpected entry after load: %+v", e)
	}
	if !e.Truncated || len(e.Excluded) != 1 || e.Excluded[0] != "lang-go" {
		t.Errorf("truncation lost after load: %+v", e)
	}
}

func TestSave_ReplacesFile(t *testing.T) {
	path := SnapshotPath(t.TempDir())
	c := New(Config{})
	_ = c.Put("a", Entry{Content: "A", PhaseTag: phase.Red})
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	_ = c.Put("b", Entry{Content: "B", PhaseTag: phase.Green})
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != SnapshotFile {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("cache dir holds %v, want only %s", names, SnapshotFile)
	}

	c2 := New(Config{})
	if err := c2.Load(path); err != nil {
		t.Fatal(err)
	}
	if c2.Len() != 2 {
		t.Errorf("Len = %d, want 2", c2.Len())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	c := New(Config{})
	if err := c.Load(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Fatalf("Load on missing file should not error: %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), SnapshotFile)
	_ = os.WriteFile(path, []byte("not json"), 0644)

	c := New(Config{})
	if err := c.Load(path); err != nil {
		t.Fatalf("Load on invalid JSON should not error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestLoad_SkipsExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), SnapshotFile)
	base := time.Now()

	c := New(Config{})
	c.now = func() time.Time { return base }
	_ = c.Put("old", Entry{Content: "x", PhaseTag: phase.Spec})
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	c2 := New(Config{TTL: time.Minute})
	c2.now = func() time.Time { return base.Add(time.Hour) }
	if err := c2.Load(path); err != nil {
		t.Fatal(err)
	}
	if c2.Len() != 0 {
		t.Errorf("expired entry should not be restored, got %d entries", c2.Len())
	}
}
