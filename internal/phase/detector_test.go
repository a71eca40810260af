package phase

import (
	"strings"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Phase
	}{
		{"explicit red phase", "Let's start the RED phase for login", Red},
		{"explicit green phase", "now the green phase", Green},
		{"explicit refactor phase", "entering refactor phase", Refactor},
		{"red beats debug keyword", "RED phase: reproduce the bug with a test", Red},
		{"run command", "/moai:2-run SPEC-AUTH-001", Red},
		{"sync command", "/moai:3-sync", Sync},
		{"plan command", "/moai:1-plan user login", Spec},
		{"project command", "/moai:0-project", Planning},
		{"debug keywords", "I get a stack trace when starting the server", Debug},
		{"red keywords", "write a test for the parser", Red},
		{"green keywords", "implement the token refresh", Green},
		{"refactor keywords", "clean up the handler package", Refactor},
		{"sync keywords", "update the README", Sync},
		{"planning keywords", "sketch the architecture for billing", Planning},
		{"spec keywords", "draft requirements for checkout", Spec},
		{"empty", "", Spec},
		{"whitespace", "   \n\t", Spec},
		{"no match", "hello there", Spec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetector_RecordsTransitions(t *testing.T) {
	d := NewDetector(0)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	if got := d.Detect("requirements for search"); got != Spec {
		t.Fatalf("Detect = %s, want SPEC", got)
	}
	if len(d.History()) != 0 {
		t.Fatalf("SPEC -> SPEC should not record a transition, got %d", len(d.History()))
	}

	d.Detect("RED phase")
	d.Detect("RED phase again")
	d.Detect("GREEN phase")

	history := d.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 transitions, got %d: %+v", len(history), history)
	}
	if history[0].From != Spec || history[0].To != Red {
		t.Errorf("first transition = %s -> %s, want SPEC -> RED", history[0].From, history[0].To)
	}
	if history[1].From != Red || history[1].To != Green {
		t.Errorf("second transition = %s -> %s, want RED -> GREEN", history[1].From, history[1].To)
	}
	if !history[1].At.Equal(fixed) {
		t.Errorf("transition time = %v, want %v", history[1].At, fixed)
	}
	if d.Current() != Green {
		t.Errorf("Current() = %s, want GREEN", d.Current())
	}
}

func TestDetector_HistoryBounded(t *testing.T) {
	d := NewDetector(3)
	inputs := []string{"RED phase", "GREEN phase", "RED phase", "GREEN phase", "RED phase"}
	for _, in := range inputs {
		d.Detect(in)
	}

	history := d.History()
	if len(history) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(history))
	}
	last := history[len(history)-1]
	if last.From != Green || last.To != Red {
		t.Errorf("last transition = %s -> %s, want GREEN -> RED", last.From, last.To)
	}
}

func TestDetector_HistoryIsCopy(t *testing.T) {
	d := NewDetector(5)
	d.Detect("RED phase")

	h := d.History()
	h[0].To = Debug

	if d.History()[0].To != Red {
		t.Error("mutating History() result should not affect the detector")
	}
}

func TestDetector_InputExcerpt(t *testing.T) {
	d := NewDetector(5)
	long := "RED phase " + strings.Repeat("word ", 50)
	d.Detect(long)

	in := d.History()[0].Input
	if !strings.HasSuffix(in, "...") {
		t.Errorf("long input should be truncated with ellipsis, got %q", in)
	}
	if len([]rune(in)) != maxRecordedInput+3 {
		t.Errorf("excerpt length = %d, want %d", len([]rune(in)), maxRecordedInput+3)
	}
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(5)
	d.Detect("RED phase")
	d.Reset()

	if d.Current() != Default {
		t.Errorf("Current() after Reset = %s, want %s", d.Current(), Default)
	}
	if len(d.History()) != 0 {
		t.Error("History() should be empty after Reset")
	}
}
