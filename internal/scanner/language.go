package scanner

import "sort"

type languageDef struct {
	name string
	code string
}

var (
	langGo         = languageDef{"Go", "go"}
	langPython     = languageDef{"Python", "python"}
	langJavaScript = languageDef{"JavaScript", "javascript"}
	langTypeScript = languageDef{"TypeScript", "typescript"}
	langCPP        = languageDef{"C++", "cpp"}
	langShell      = languageDef{"Shell", "shell"}
	langElixir     = languageDef{"Elixir", "elixir"}
)

// extensions maps file extensions to languages. Headers and markup are
// deliberately absent so they never outvote real source files.
var extensions = map[string]languageDef{
	".go":     langGo,
	".py":     langPython,
	".js":     langJavaScript,
	".jsx":    langJavaScript,
	".mjs":    langJavaScript,
	".ts":     langTypeScript,
	".tsx":    langTypeScript,
	".java":   {"Java", "java"},
	".kt":     {"Kotlin", "kotlin"},
	".rs":     {"Rust", "rust"},
	".rb":     {"Ruby", "ruby"},
	".php":    {"PHP", "php"},
	".c":      {"C", "c"},
	".cpp":    langCPP,
	".cc":     langCPP,
	".cs":     {"C#", "csharp"},
	".swift":  {"Swift", "swift"},
	".scala":  {"Scala", "scala"},
	".ex":     langElixir,
	".exs":    langElixir,
	".dart":   {"Dart", "dart"},
	".lua":    {"Lua", "lua"},
	".r":      {"R", "r"},
	".sh":     langShell,
	".bash":   langShell,
	".vue":    {"Vue", "vue"},
	".svelte": {"Svelte", "svelte"},
}

// Languages past maxLanguages are kept only while their share reaches minShare.
const (
	maxLanguages = 5
	minShare     = 5.0
)

// rankLanguages turns per-extension counts into languages, most files first.
func rankLanguages(extCounts map[string]int) []Language {
	byName := make(map[string]*Language)
	total := 0
	for ext, n := range extCounts {
		def, ok := extensions[ext]
		if !ok {
			continue
		}
		l, ok := byName[def.name]
		if !ok {
			l = &Language{Name: def.name, Code: def.code}
			byName[def.name] = l
		}
		l.Files += n
		l.Extensions = append(l.Extensions, ext)
		total += n
	}
	if total == 0 {
		return nil
	}

	out := make([]Language, 0, len(byName))
	for _, l := range byName {
		l.Share = float64(l.Files) / float64(total) * 100
		sort.Strings(l.Extensions)
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Name < out[j].Name
	})

	for i := range out {
		if i >= maxLanguages && out[i].Share < minShare {
			return out[:i]
		}
	}
	return out
}
