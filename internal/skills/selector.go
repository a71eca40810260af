package skills

import (
	"sort"
	"strings"

	"github.com/modu-ai/moai-adk/internal/phase"
)

// phaseCategories ranks skill categories by relevance for each phase.
var phaseCategories = map[phase.Phase][]string{
	phase.Spec:     {"spec", "requirements", "planning", "documentation"},
	phase.Planning: {"planning", "architecture", "spec", "project"},
	phase.Red:      {"testing", "tdd", "language"},
	phase.Green:    {"language", "implementation", "testing"},
	phase.Refactor: {"refactoring", "quality", "language"},
	phase.Sync:     {"documentation", "git", "tag"},
	phase.Debug:    {"debugging", "language", "testing"},
}

const (
	rankUniversal = 0
	rankPhase     = 1
	rankCategory  = 2
)

// Selection is the outcome of filtering skills for a phase under a token budget.
type Selection struct {
	Phase      phase.Phase
	Skills     []SkillInfo
	Excluded   []string
	TokensUsed int
	Budget     int
	Truncated  bool
}

// Names returns the selected skill names in order.
func (s Selection) Names() []string {
	names := make([]string, 0, len(s.Skills))
	for _, sk := range s.Skills {
		names = append(names, sk.Name)
	}
	return names
}

// Content composes the selected skills into a single prompt string.
func (s Selection) Content() string {
	return Compose(s.Skills)
}

// Compose joins skill contents with "\n\n" separators, preserving order.
func Compose(skills []SkillInfo) string {
	parts := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk.Content != "" {
			parts = append(parts, sk.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Selector provides phase-aware skill selection over a fixed skill set.
// It performs no I/O.
type Selector struct {
	skills     []SkillInfo
	categories map[phase.Phase][]string
}

// NewSelector creates a Selector over skills using the built-in category table.
func NewSelector(skills []SkillInfo) *Selector {
	return &Selector{skills: skills, categories: phaseCategories}
}

// WithCategories replaces the category ranking for one phase.
func (s *Selector) WithCategories(p phase.Phase, categories []string) *Selector {
	table := make(map[phase.Phase][]string, len(s.categories)+1)
	for k, v := range s.categories {
		table[k] = v
	}
	table[p] = normalizeCategories(categories)
	return &Selector{skills: s.skills, categories: table}
}

type ranked struct {
	skill SkillInfo
	rank  int
}

// Candidates returns the skills relevant to p, most relevant first.
// Universal skills lead, then skills naming the phase explicitly, then skills
// whose categories appear in the phase's category table in table order.
// Ties break on priority and name.
func (s *Selector) Candidates(p phase.Phase) []SkillInfo {
	var list []ranked
	for _, sk := range s.skills {
		if r, ok := s.rank(sk, p); ok {
			list = append(list, ranked{skill: sk, rank: r})
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].rank != list[j].rank {
			return list[i].rank < list[j].rank
		}
		if list[i].skill.Priority != list[j].skill.Priority {
			return list[i].skill.Priority < list[j].skill.Priority
		}
		return list[i].skill.Name < list[j].skill.Name
	})

	out := make([]SkillInfo, len(list))
	for i, r := range list {
		out[i] = r.skill
	}
	return out
}

// Filter selects candidates for p greedily in rank order, including each skill
// whose tokens still fit in the remaining budget. A skill that does not fit is
// recorded as excluded and the walk continues. A non-positive budget is unlimited.
func (s *Selector) Filter(p phase.Phase, tokenBudget int) Selection {
	sel := Selection{Phase: p, Budget: tokenBudget}
	for _, sk := range s.Candidates(p) {
		if tokenBudget > 0 && sel.TokensUsed+sk.Tokens > tokenBudget {
			sel.Excluded = append(sel.Excluded, sk.Name)
			continue
		}
		sel.Skills = append(sel.Skills, sk)
		sel.TokensUsed += sk.Tokens
	}
	sel.Truncated = len(sel.Excluded) > 0
	return sel
}

// SelectForPhase composes every candidate for p, ignoring budgets.
func (s *Selector) SelectForPhase(p phase.Phase) string {
	return Compose(s.Candidates(p))
}

// SkillsForPhase returns the names of the candidates for p.
func (s *Selector) SkillsForPhase(p phase.Phase) []string {
	var names []string
	for _, sk := range s.Candidates(p) {
		names = append(names, sk.Name)
	}
	return names
}

// SelectByNames composes skills matching the given names, in index order.
// Names that don't match any skill are silently skipped.
func (s *Selector) SelectByNames(names []string) string {
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}
	var picked []SkillInfo
	for _, sk := range s.skills {
		if nameSet[sk.Name] {
			picked = append(picked, sk)
		}
	}
	return Compose(picked)
}

// rank returns the relevance tier of sk for p, and false when it does not apply.
func (s *Selector) rank(sk SkillInfo, p phase.Phase) (int, bool) {
	if sk.Universal() {
		return rankUniversal, true
	}
	if sk.HasPhase(p) {
		return rankPhase, true
	}
	for i, c := range s.categories[p] {
		for _, sc := range sk.Categories {
			if sc == c {
				return rankCategory + i, true
			}
		}
	}
	return 0, false
}
