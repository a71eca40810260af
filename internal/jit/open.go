package jit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/modu-ai/moai-adk/internal/budget"
	"github.com/modu-ai/moai-adk/internal/cache"
	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/phase"
	"github.com/modu-ai/moai-adk/internal/skills"
)

// Open builds a Loader for the project at root from cfg. Project skills come
// from cfg.Skills.Dir; when that directory holds no skills and builtins are
// enabled the embedded defaults are used instead. With persistence enabled the
// cache is primed from its snapshot and Close writes it back.
func Open(ctx context.Context, root string, cfg *config.Config, logger *slog.Logger) (*Loader, *skills.Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	budgets, err := cfg.Context.TokenBudgets()
	if err != nil {
		return nil, nil, err
	}

	dir := cfg.Skills.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	ix, err := skills.OpenProject(ctx, dir, cfg.Skills.Builtins, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index skills: %w", err)
	}

	c := cache.New(cache.Config{
		MaxEntries: cfg.Context.MaxEntries,
		MaxBytes:   cfg.Context.MaxBytes(),
		TTL:        cfg.Context.CacheTTL(),
	})

	l := New(phase.NewDetector(cfg.Context.HistorySize), ix, c, budget.NewManager(budgets, logger), logger)
	if cfg.Context.Persist {
		l.snapshot = cache.SnapshotPath(root)
		if err := c.Load(l.snapshot); err != nil {
			logger.Warn("context cache snapshot not loaded", "path", l.snapshot, "error", err)
		}
	}
	return l, ix, nil
}

// Close persists the cache snapshot when the loader was opened with
// persistence enabled.
func (l *Loader) Close() error {
	if l.snapshot == "" {
		return nil
	}
	l.cache.PurgeExpired()
	if err := l.cache.Save(l.snapshot); err != nil {
		return fmt.Errorf("failed to save context cache: %w", err)
	}
	return nil
}
