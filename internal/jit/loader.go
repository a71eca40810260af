// Package jit assembles phase-appropriate skill bundles on demand and caches them.
package jit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modu-ai/moai-adk/internal/budget"
	"github.com/modu-ai/moai-adk/internal/cache"
	"github.com/modu-ai/moai-adk/internal/phase"
	"github.com/modu-ai/moai-adk/internal/skills"
)

// SkillSource supplies the current skill set. *skills.Index satisfies it.
type SkillSource interface {
	Skills() []skills.SkillInfo
}

// Bundle is the context assembled for one request.
type Bundle struct {
	ID         string        `json:"id"`
	Phase      phase.Phase   `json:"phase"`
	Skills     []string      `json:"skills"`
	Excluded   []string      `json:"excluded,omitempty"`
	Content    string        `json:"content"`
	Tokens     int           `json:"tokens"`
	Budget     int           `json:"budget"`
	CacheHit   bool          `json:"cache_hit"`
	Truncated  bool          `json:"truncated"`
	OverBudget bool          `json:"over_budget"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Stats summarises loader activity.
type Stats struct {
	Cache        cache.Stats                  `json:"cache"`
	Usage        map[phase.Phase]budget.Usage `json:"usage"`
	Efficiency   float64                      `json:"efficiency"`
	CurrentPhase phase.Phase                  `json:"current_phase"`
	Transitions  []phase.Transition           `json:"transitions"`
	Skills       int                          `json:"skills"`
}

// Loader is the JIT context loader. Safe for concurrent use.
type Loader struct {
	detector *phase.Detector
	source   SkillSource
	cache    *cache.ContextCache
	budgets  *budget.Manager
	logger   *slog.Logger
	snapshot string

	mu       sync.RWMutex
	selector *skills.Selector
}

// New wires a Loader from its parts. A nil logger discards output.
func New(detector *phase.Detector, source SkillSource, c *cache.ContextCache, budgets *budget.Manager, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		detector: detector,
		source:   source,
		cache:    c,
		budgets:  budgets,
		logger:   logger,
		selector: skills.NewSelector(source.Skills()),
	}
}

// Load detects the phase of input and returns the matching bundle.
func (l *Loader) Load(ctx context.Context, input string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.load(ctx, l.detector.Detect(input), input)
}

// LoadForPhase returns the bundle for an explicit phase, skipping detection.
func (l *Loader) LoadForPhase(ctx context.Context, p phase.Phase, input string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", phase.ErrUnknownPhase, p)
	}
	return l.load(ctx, p, input)
}

func (l *Loader) load(_ context.Context, p phase.Phase, input string) (*Bundle, error) {
	start := time.Now()
	tokenBudget := l.budgets.Budget(p)
	key := cache.Key(p, tokenBudget, input)

	bundle := &Bundle{ID: uuid.NewString(), Phase: p, Budget: tokenBudget}

	if e, ok := l.cache.Get(key); ok {
		bundle.Skills = e.Skills
		bundle.Excluded = e.Excluded
		bundle.Content = e.Content
		bundle.Tokens = e.TokenCount
		bundle.Truncated = e.Truncated
		bundle.CacheHit = true
	} else {
		l.mu.RLock()
		sel := l.selector.Filter(p, tokenBudget)
		l.mu.RUnlock()

		bundle.Skills = sel.Names()
		bundle.Excluded = sel.Excluded
		bundle.Content = sel.Content()
		bundle.Tokens = sel.TokensUsed
		bundle.Truncated = sel.Truncated

		if sel.Truncated {
			l.logger.Debug("skill list truncated by budget",
				"phase", p, "budget", tokenBudget, "excluded", sel.Excluded)
		}

		err := l.cache.Put(key, cache.Entry{
			Content:    bundle.Content,
			TokenCount: bundle.Tokens,
			PhaseTag:   p,
			Skills:     bundle.Skills,
			Excluded:   bundle.Excluded,
			Truncated:  bundle.Truncated,
		})
		if err != nil {
			l.logger.Warn("context bundle not cached", "phase", p, "error", err)
		}
	}

	if err := l.budgets.Record(p, bundle.Tokens); err != nil {
		if !errors.Is(err, budget.ErrOverBudget) {
			return nil, err
		}
		bundle.OverBudget = true
	}

	bundle.Elapsed = time.Since(start)
	l.logger.Debug("context loaded",
		"phase", p, "skills", len(bundle.Skills), "tokens", bundle.Tokens,
		"cache_hit", bundle.CacheHit, "elapsed", bundle.Elapsed)
	return bundle, nil
}

// Refresh rebuilds the selector from the skill source and drops every cached
// bundle, since any of them may reference stale skill content.
func (l *Loader) Refresh() {
	sel := skills.NewSelector(l.source.Skills())
	l.mu.Lock()
	l.selector = sel
	l.mu.Unlock()
	l.cache.Clear()
}

// Invalidate drops cached bundles for one phase.
func (l *Loader) Invalidate(p phase.Phase) int {
	return l.cache.InvalidatePhase(p)
}

// Cache exposes the underlying cache, e.g. for snapshotting.
func (l *Loader) Cache() *cache.ContextCache {
	return l.cache
}

// Stats returns cache, budget, and phase-history diagnostics.
func (l *Loader) Stats() Stats {
	return Stats{
		Cache:        l.cache.Stats(),
		Usage:        l.budgets.Usage(),
		Efficiency:   l.budgets.Efficiency(),
		CurrentPhase: l.detector.Current(),
		Transitions:  l.detector.History(),
		Skills:       len(l.source.Skills()),
	}
}
