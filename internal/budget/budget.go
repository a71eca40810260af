// Package budget tracks token consumption per workflow phase against static ceilings.
package budget

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/modu-ai/moai-adk/internal/phase"
)

// ErrOverBudget is returned by Record when a phase exceeds its ceiling.
var ErrOverBudget = errors.New("token budget exceeded")

// DefaultBudgets holds the per-phase ceilings used when config does not override them.
var DefaultBudgets = map[phase.Phase]int{
	phase.Spec:     30000,
	phase.Red:      25000,
	phase.Green:    25000,
	phase.Refactor: 20000,
	phase.Sync:     40000,
	phase.Debug:    15000,
	phase.Planning: 35000,
}

// FallbackBudget applies to phases with no override, no Default and no built-in ceiling.
const FallbackBudget = 20000

// Budgets maps phases to token ceilings.
type Budgets struct {
	Default   int                 `json:"default" yaml:"default" mapstructure:"default"`
	Overrides map[phase.Phase]int `json:"overrides,omitempty" yaml:"overrides,omitempty" mapstructure:"overrides"`
}

// For returns the ceiling for p: override, then Default, then the built-in table.
func (b Budgets) For(p phase.Phase) int {
	if v, ok := b.Overrides[p]; ok && v > 0 {
		return v
	}
	if b.Default > 0 {
		return b.Default
	}
	if v, ok := DefaultBudgets[p]; ok {
		return v
	}
	return FallbackBudget
}

// UnknownPhases returns override keys that are not recognised phases, sorted.
func (b Budgets) UnknownPhases() []string {
	var unknown []string
	for p := range b.Overrides {
		if !p.Valid() {
			unknown = append(unknown, string(p))
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Usage is the accumulated consumption for one phase.
type Usage struct {
	Phase    phase.Phase `json:"phase"`
	Used     int         `json:"used"`
	Budget   int         `json:"budget"`
	Requests int         `json:"requests"`
}

// Over reports whether usage exceeds the budget.
func (u Usage) Over() bool {
	return u.Used > u.Budget
}

// Manager accumulates token usage per phase. Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	budgets Budgets
	usage   map[phase.Phase]*Usage
	logger  *slog.Logger
}

// NewManager creates a Manager. A nil logger discards warnings.
func NewManager(budgets Budgets, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		budgets: budgets,
		usage:   make(map[phase.Phase]*Usage),
		logger:  logger,
	}
}

// Budget returns the ceiling configured for p.
func (m *Manager) Budget(p phase.Phase) int {
	return m.budgets.For(p)
}

// Record adds tokens to p's running total. Usage is always recorded; when the
// total passes the ceiling a warning is logged and an ErrOverBudget error returned.
func (m *Manager) Record(p phase.Phase, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("negative token count %d for phase %s", tokens, p)
	}

	m.mu.Lock()
	u, ok := m.usage[p]
	if !ok {
		u = &Usage{Phase: p, Budget: m.budgets.For(p)}
		m.usage[p] = u
	}
	u.Used += tokens
	u.Requests++
	snapshot := *u
	m.mu.Unlock()

	if snapshot.Over() {
		m.logger.Warn("phase over budget",
			"phase", p, "used", snapshot.Used, "budget", snapshot.Budget)
		return fmt.Errorf("%w: phase %s used %d of %d tokens", ErrOverBudget, p, snapshot.Used, snapshot.Budget)
	}
	return nil
}

// Remaining returns the unused budget for p, never negative.
func (m *Manager) Remaining(p phase.Phase) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := m.budgets.For(p)
	if u, ok := m.usage[p]; ok {
		limit -= u.Used
	}
	if limit < 0 {
		return 0
	}
	return limit
}

// Usage returns a snapshot of usage per phase.
func (m *Manager) Usage() map[phase.Phase]Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[phase.Phase]Usage, len(m.usage))
	for p, u := range m.usage {
		out[p] = *u
	}
	return out
}

// Efficiency is total tokens used divided by the summed budgets of phases that
// recorded any usage. It returns 0 when nothing has been recorded.
func (m *Manager) Efficiency() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var used, total int
	for _, u := range m.usage {
		used += u.Used
		total += u.Budget
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// Reset drops all recorded usage.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = make(map[phase.Phase]*Usage)
}

// EstimateTokens approximates the token count of text at four characters per token.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
