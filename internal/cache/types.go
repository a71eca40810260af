// Package cache provides the bounded in-memory context cache used by the JIT loader.
package cache

import (
	"errors"
	"time"

	"github.com/modu-ai/moai-adk/internal/phase"
)

// ErrEntryTooLarge is returned by Put when one entry alone exceeds MaxBytes.
var ErrEntryTooLarge = errors.New("cache entry exceeds memory ceiling")

const (
	DefaultMaxEntries = 50
	DefaultMaxBytes   = 50 << 20

	// entryOverhead approximates per-entry bookkeeping beyond the content bytes.
	entryOverhead = 256
)

// Entry is a cached context bundle.
type Entry struct {
	Content     string      `json:"content"`
	TokenCount  int         `json:"token_count"`
	PhaseTag    phase.Phase `json:"phase_tag"`
	Skills      []string    `json:"skills,omitempty"`
	Excluded    []string    `json:"excluded,omitempty"`
	Truncated   bool        `json:"truncated,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	LastAccess  time.Time   `json:"last_access"`
	AccessCount int         `json:"access_count"`
}

// size approximates the memory held by the entry.
func (e *Entry) size() int64 {
	n := int64(len(e.Content)) + entryOverhead
	for _, s := range e.Skills {
		n += int64(len(s))
	}
	for _, s := range e.Excluded {
		n += int64(len(s))
	}
	return n
}

// clone returns a copy that shares no slices with e.
func (e *Entry) clone() *Entry {
	out := *e
	out.Skills = append([]string(nil), e.Skills...)
	out.Excluded = append([]string(nil), e.Excluded...)
	return &out
}

// Config holds cache limits.
type Config struct {
	MaxEntries int
	MaxBytes   int64
	// TTL expires entries by age; zero disables expiry.
	TTL time.Duration
}

// Stats is a point-in-time view of cache behaviour.
type Stats struct {
	Entries   int     `json:"entries"`
	Bytes     int64   `json:"bytes"`
	MaxBytes  int64   `json:"max_bytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Expired   int64   `json:"expired"`
	HitRate   float64 `json:"hit_rate"`
}
