// Package template renders and installs the MoAI project scaffold.
package template

import (
	"regexp"
	"sort"
)

// placeholderPattern matches {{NAME}} placeholders and captures NAME.
var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Render substitutes {{NAME}} placeholders with values from vars. Unknown
// placeholders are left as-is.
func Render(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := match[2 : len(match)-2]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

// Placeholders returns the distinct placeholder names in text, sorted.
func Placeholders(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// MergeVariables merges built-in variables with user-provided ones.
// User values win on name collision.
func MergeVariables(builtins, user map[string]string) map[string]string {
	if len(builtins) == 0 && len(user) == 0 {
		return nil
	}

	result := make(map[string]string, len(builtins)+len(user))
	for k, v := range builtins {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}
