package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/jit"
	"github.com/modu-ai/moai-adk/internal/version"
)

// writeTools are the Claude Code tools that modify files.
var writeTools = map[string]bool{
	"Write":        true,
	"Edit":         true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// ContextLoader produces the context bundle for a prompt. *jit.Loader satisfies it.
type ContextLoader interface {
	Load(ctx context.Context, input string) (*jit.Bundle, error)
}

// SessionSummary greets a new session with a one-paragraph project summary.
func SessionSummary(root string, cfg *config.Config, skillCount func() int) Handler {
	return HandlerFunc("session-summary", func(_ context.Context, in *Input) (Result, error) {
		name := cfg.Project.Name
		if name == "" {
			name = filepath.Base(root)
		}
		specs := countSpecs(root)

		var b strings.Builder
		fmt.Fprintf(&b, "MoAI-ADK %s | project %s (%s mode)", version.Short(), name, cfg.Project.Mode)
		fmt.Fprintf(&b, " | %d skills | %d SPECs", skillCount(), specs)
		if cfg.Language.Conversation != "" && cfg.Language.Conversation != "en" {
			fmt.Fprintf(&b, " | reply in %s", cfg.Language.Conversation)
		}

		res := Pass()
		res.AdditionalContext = []string{b.String()}
		if in.Source == "" || in.Source == "startup" {
			res.Messages = []string{"🗿 " + b.String()}
		}
		return res, nil
	})
}

func countSpecs(root string) int {
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(config.SpecsDir)))
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "SPEC-") {
			n++
		}
	}
	return n
}

// InjectContext runs the JIT loader on each prompt and attaches the bundle.
func InjectContext(loader ContextLoader) Handler {
	return HandlerFunc("jit-context", func(ctx context.Context, in *Input) (Result, error) {
		if strings.TrimSpace(in.Prompt) == "" {
			return Pass(), nil
		}
		b, err := loader.Load(ctx, in.Prompt)
		if err != nil {
			return Result{}, err
		}
		res := Pass()
		if b.Content == "" {
			return res, nil
		}
		header := fmt.Sprintf("<!-- moai:context phase=%s skills=%s tokens=%d/%d -->",
			b.Phase, strings.Join(b.Skills, ","), b.Tokens, b.Budget)
		res.AdditionalContext = []string{header + "\n" + b.Content}
		if b.OverBudget {
			res.Messages = []string{fmt.Sprintf("moai: %s phase is over its token budget", b.Phase)}
		}
		return res, nil
	})
}

// ProtectPaths denies file-modifying tool calls whose target matches one of
// the doublestar patterns, relative to root. Patterns without a slash also
// match the file's base name.
func ProtectPaths(root string, patterns []string) Handler {
	return HandlerFunc("protected-paths", func(_ context.Context, in *Input) (Result, error) {
		if !writeTools[in.ToolName] {
			return Pass(), nil
		}
		target := in.FilePath()
		if target == "" {
			return Pass(), nil
		}
		rel := relPath(root, in.Cwd, target)
		if p, ok := matchProtected(rel, patterns); ok {
			return Deny(fmt.Sprintf("moai: %s is protected (matches %q)", rel, p)), nil
		}
		return Pass(), nil
	})
}

func relPath(root, cwd, target string) string {
	if !filepath.IsAbs(target) {
		base := cwd
		if base == "" {
			base = root
		}
		target = filepath.Join(base, target)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

func matchProtected(rel string, patterns []string) (string, bool) {
	base := rel[strings.LastIndex(rel, "/")+1:]
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return p, true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return p, true
			}
		}
	}
	return "", false
}

// ReloadSkills calls reload after a tool edits a Markdown file inside skillsDir.
func ReloadSkills(root, skillsDir string, reload func(ctx context.Context) error) Handler {
	return HandlerFunc("skills-reload", func(ctx context.Context, in *Input) (Result, error) {
		if !writeTools[in.ToolName] {
			return Pass(), nil
		}
		target := in.FilePath()
		if !strings.EqualFold(filepath.Ext(target), ".md") {
			return Pass(), nil
		}
		rel := relPath(root, in.Cwd, target)
		dir := strings.TrimSuffix(filepath.ToSlash(skillsDir), "/") + "/"
		if !strings.HasPrefix(rel, dir) {
			return Pass(), nil
		}
		if err := reload(ctx); err != nil {
			return Result{}, err
		}
		res := Pass()
		res.Messages = []string{"moai: skills re-indexed after edit to " + rel}
		return res, nil
	})
}

// OnSessionEnd runs fn when the session ends, e.g. to persist the context cache.
func OnSessionEnd(name string, fn func() error) Handler {
	return HandlerFunc(name, func(context.Context, *Input) (Result, error) {
		if err := fn(); err != nil {
			return Result{}, err
		}
		return Pass(), nil
	})
}
