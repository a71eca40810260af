package cache

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/modu-ai/moai-adk/internal/phase"
)

func entry(p phase.Phase, content string) Entry {
	return Entry{Content: content, TokenCount: len(content) / 4, PhaseTag: p}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	if c.maxBytes != DefaultMaxBytes {
		t.Errorf("maxBytes = %d, want %d", c.maxBytes, DefaultMaxBytes)
	}
	for i := 0; i < DefaultMaxEntries+1; i++ {
		_ = c.Put(fmt.Sprintf("k%d", i), entry(phase.Spec, "x"))
	}
	if c.Len() != DefaultMaxEntries {
		t.Errorf("Len = %d, want %d", c.Len(), DefaultMaxEntries)
	}
}

func TestPut_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(Config{MaxEntries: 3})

	_ = c.Put("a", entry(phase.Spec, "A"))
	_ = c.Put("b", entry(phase.Spec, "B"))
	_ = c.Put("c", entry(phase.Spec, "C"))

	// Touch "a" so "b" becomes the least recently used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}
	_ = c.Put("d", entry(phase.Spec, "D"))

	if _, ok := c.Peek("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Peek(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestPut_MemoryCeiling(t *testing.T) {
	big := strings.Repeat("x", 1000)
	limit := int64(2*(len(big)+entryOverhead) + 10)
	c := New(Config{MaxEntries: 10, MaxBytes: limit})

	_ = c.Put("a", entry(phase.Red, big))
	_ = c.Put("b", entry(phase.Red, big))
	_ = c.Put("c", entry(phase.Red, big))

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Peek("a"); ok {
		t.Error("oldest entry should be evicted to respect memory ceiling")
	}
	if s := c.Stats(); s.Bytes > limit {
		t.Errorf("Bytes = %d exceeds ceiling %d", s.Bytes, limit)
	}
}

func TestPut_EntryTooLarge(t *testing.T) {
	c := New(Config{MaxBytes: 100})
	err := c.Put("huge", entry(phase.Spec, strings.Repeat("x", 200)))
	if !errors.Is(err, ErrEntryTooLarge) {
		t.Fatalf("expected ErrEntryTooLarge, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("oversized entry must not be stored")
	}
}

func TestPut_ReplaceKeepsByteAccounting(t *testing.T) {
	c := New(Config{})
	_ = c.Put("a", entry(phase.Spec, strings.Repeat("x", 100)))
	_ = c.Put("a", entry(phase.Spec, strings.Repeat("y", 10)))

	want := int64(10 + entryOverhead)
	if got := c.Stats().Bytes; got != want {
		t.Errorf("Bytes = %d, want %d", got, want)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestGet_UpdatesAccessMetadata(t *testing.T) {
	c := New(Config{})
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	_ = c.Put("k", entry(phase.Green, "content"))

	c.now = func() time.Time { return base.Add(time.Minute) }
	e, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if e.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", e.AccessCount)
	}
	if !e.LastAccess.Equal(base.Add(time.Minute)) {
		t.Errorf("LastAccess = %v, want %v", e.LastAccess, base.Add(time.Minute))
	}
	if !e.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, base)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Hits/Misses = %d/%d, want 1/1", s.Hits, s.Misses)
	}
	if s.HitRate != 0.5 {
		t.Errorf("HitRate = %f, want 0.5", s.HitRate)
	}
}

func TestGet_TTLExpiry(t *testing.T) {
	c := New(Config{TTL: time.Minute})
	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Put("k", entry(phase.Spec, "v"))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be removed")
	}
	if got := c.Stats().Expired; got != 1 {
		t.Errorf("Expired = %d, want 1", got)
	}
}

func TestPurgeExpired(t *testing.T) {
	c := New(Config{TTL: time.Minute})
	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Put("old", entry(phase.Spec, "v"))

	c.now = func() time.Time { return base.Add(90 * time.Second) }
	_ = c.Put("new", entry(phase.Spec, "v"))

	if got := c.PurgeExpired(); got != 1 {
		t.Errorf("PurgeExpired = %d, want 1", got)
	}
	if _, ok := c.Peek("new"); !ok {
		t.Error("fresh entry should survive purge")
	}

	if got := New(Config{}).PurgeExpired(); got != 0 {
		t.Errorf("PurgeExpired without TTL = %d, want 0", got)
	}
}

func TestInvalidatePhase(t *testing.T) {
	c := New(Config{})
	_ = c.Put("r1", entry(phase.Red, "1"))
	_ = c.Put("g1", entry(phase.Green, "2"))
	_ = c.Put("r2", entry(phase.Red, "3"))

	if got := c.InvalidatePhase(phase.Red); got != 2 {
		t.Errorf("InvalidatePhase(RED) = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Peek("g1"); !ok {
		t.Error("GREEN entry should remain")
	}
	if got := c.Stats().Evictions; got != 0 {
		t.Errorf("invalidation should not count as eviction, got %d", got)
	}
	if got := c.Stats().Bytes; got != int64(1+entryOverhead) {
		t.Errorf("Bytes = %d, want %d", got, 1+entryOverhead)
	}
}

func TestClear(t *testing.T) {
	c := New(Config{})
	_ = c.Put("a", entry(phase.Spec, "a"))
	c.Clear()
	if c.Len() != 0 || c.Stats().Bytes != 0 {
		t.Errorf("Clear left Len=%d Bytes=%d", c.Len(), c.Stats().Bytes)
	}
}

func TestKey(t *testing.T) {
	k1 := Key(phase.Red, 25000, "Write   a test")
	k2 := Key(phase.Red, 25000, "write a TEST")
	k3 := Key(phase.Green, 25000, "write a test")
	k4 := Key(phase.Red, 5000, "write a test")

	if k1 != k2 {
		t.Errorf("keys should ignore case and whitespace: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Error("keys for different phases must differ")
	}
	if k1 == k4 {
		t.Error("keys for different budgets must differ")
	}
	if !strings.HasPrefix(k1, "red:25000:") {
		t.Errorf("key should be prefixed with phase and budget, got %q", k1)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := New(Config{})
	skills := []string{"foundation", "tdd"}
	_ = c.Put("k", Entry{Content: "x", PhaseTag: phase.Red, Skills: skills, Excluded: []string{"lang-go"}})
	skills[0] = "changed-by-caller"

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	got.Skills[1] = "changed"
	got.Excluded[0] = "changed"

	again, _ := c.Peek("k")
	if again.Skills[0] != "foundation" || again.Skills[1] != "tdd" {
		t.Errorf("cached Skills = %v, want [foundation tdd]", again.Skills)
	}
	if again.Excluded[0] != "lang-go" {
		t.Errorf("cached Excluded = %v, want [lang-go]", again.Excluded)
	}
}
