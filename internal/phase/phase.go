// Package phase classifies free-form developer input into a workflow phase.
package phase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Phase is a development-workflow stage used to select relevant skills.
type Phase string

const (
	Spec     Phase = "SPEC"
	Red      Phase = "RED"
	Green    Phase = "GREEN"
	Refactor Phase = "REFACTOR"
	Sync     Phase = "SYNC"
	Debug    Phase = "DEBUG"
	Planning Phase = "PLANNING"
)

// Default is returned when no rule matches.
const Default = Spec

// ErrUnknownPhase is returned by Parse for names outside the phase set.
var ErrUnknownPhase = errors.New("unknown phase")

var validPhases = map[Phase]bool{
	Spec:     true,
	Red:      true,
	Green:    true,
	Refactor: true,
	Sync:     true,
	Debug:    true,
	Planning: true,
}

// All returns every phase in workflow order.
func All() []Phase {
	return []Phase{Spec, Planning, Red, Green, Refactor, Sync, Debug}
}

// Names returns the sorted list of phase names.
func Names() []string {
	names := make([]string, 0, len(validPhases))
	for p := range validPhases {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// Parse converts a case-insensitive phase name into a Phase.
func Parse(s string) (Phase, error) {
	p := Phase(strings.ToUpper(strings.TrimSpace(s)))
	if !validPhases[p] {
		return "", fmt.Errorf("%w: %q (must be one of %s)", ErrUnknownPhase, s, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Valid reports whether p is a recognised phase.
func (p Phase) Valid() bool {
	return validPhases[p]
}

// Lower returns the lower-case form used in file names and cache keys.
func (p Phase) Lower() string {
	return strings.ToLower(string(p))
}

func (p Phase) String() string {
	return string(p)
}
