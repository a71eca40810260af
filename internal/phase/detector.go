package phase

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultHistorySize bounds the number of transitions kept for diagnostics.
const DefaultHistorySize = 10

// maxRecordedInput caps the input excerpt stored with each transition.
const maxRecordedInput = 80

// rule maps a pattern to the phase it signals. Rules are evaluated in order.
type rule struct {
	phase   Phase
	pattern *regexp.Regexp
}

// rules is the ordered rule table. Explicit phase mentions and slash commands
// come first so "write the RED phase test for the debug helper" is RED, not DEBUG.
var rules = []rule{
	{Red, regexp.MustCompile(`(?i)\bred\s+phase\b|\bphase\s*:\s*red\b`)},
	{Green, regexp.MustCompile(`(?i)\bgreen\s+phase\b|\bphase\s*:\s*green\b`)},
	{Refactor, regexp.MustCompile(`(?i)\brefactor(ing)?\s+phase\b|\bphase\s*:\s*refactor\b`)},
	{Planning, regexp.MustCompile(`(?i)/moai:0-project\b|\bplanning\s+phase\b`)},
	{Spec, regexp.MustCompile(`(?i)/moai:1-plan\b|\bspec\s+phase\b`)},
	{Red, regexp.MustCompile(`(?i)/moai:2-run\b`)},
	{Sync, regexp.MustCompile(`(?i)/moai:3-sync\b|\bsync\s+phase\b`)},

	{Debug, regexp.MustCompile(`(?i)\b(debug(ging)?|bug|error|exception|stack\s*trace|traceback|crash(es|ed)?|panic|broken|fix(ing)?\s+(the\s+)?(issue|failure))\b`)},
	{Red, regexp.MustCompile(`(?i)\b(failing\s+tests?|write\s+(a\s+)?tests?|test\s+first|tdd|unit\s+tests?|test\s+cases?)\b`)},
	{Green, regexp.MustCompile(`(?i)\b(implement(ation)?|make\s+(the\s+)?tests?\s+pass|minimal\s+code|pass(ing)?\s+tests?)\b`)},
	{Refactor, regexp.MustCompile(`(?i)\b(refactor(ing)?|clean\s*up|restructure|simplify|extract\s+(method|function)|code\s+smell|improve\s+readability)\b`)},
	{Sync, regexp.MustCompile(`(?i)\b(sync(hroni[sz]e)?|documentation|docs?|readme|changelog|release\s+notes|pull\s+request|pr)\b`)},
	{Planning, regexp.MustCompile(`(?i)\b(plan(ning)?|architecture|design|roadmap|strategy|breakdown|estimate)\b`)},
	{Spec, regexp.MustCompile(`(?i)\b(spec(ification)?|requirements?|ears|user\s+stor(y|ies)|acceptance\s+criteria)\b`)},
}

// Transition records a change in detected phase.
type Transition struct {
	From  Phase     `json:"from"`
	To    Phase     `json:"to"`
	At    time.Time `json:"at"`
	Input string    `json:"input"`
}

// Detector maps free text to a Phase and keeps a short transition history.
type Detector struct {
	mu          sync.Mutex
	current     Phase
	history     []Transition
	historySize int
	now         func() time.Time
}

// NewDetector creates a Detector keeping up to historySize transitions.
// A non-positive size uses DefaultHistorySize.
func NewDetector(historySize int) *Detector {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	return &Detector{
		current:     Default,
		historySize: historySize,
		now:         time.Now,
	}
}

// Classify returns the phase signalled by text without touching history.
func Classify(text string) Phase {
	if strings.TrimSpace(text) == "" {
		return Default
	}
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.phase
		}
	}
	return Default
}

// Detect classifies text and records a transition when the phase changes.
func (d *Detector) Detect(text string) Phase {
	p := Classify(text)

	d.mu.Lock()
	defer d.mu.Unlock()

	if p != d.current {
		d.history = append(d.history, Transition{
			From:  d.current,
			To:    p,
			At:    d.now(),
			Input: excerpt(text),
		})
		if len(d.history) > d.historySize {
			d.history = d.history[len(d.history)-d.historySize:]
		}
		d.current = p
	}
	return p
}

// Current returns the most recently detected phase.
func (d *Detector) Current() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// History returns a copy of the recorded transitions, oldest first.
func (d *Detector) History() []Transition {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Transition, len(d.history))
	copy(out, d.history)
	return out
}

// Reset clears history and returns the detector to the default phase.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = Default
	d.history = nil
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxRecordedInput {
		return string(runes[:maxRecordedInput]) + "..."
	}
	return text
}
