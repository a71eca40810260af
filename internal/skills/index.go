package skills

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/modu-ai/moai-adk/internal/budget"
	"github.com/modu-ai/moai-adk/internal/phase"
)

// SkillFile is the conventional file name for directory-packaged skills.
const SkillFile = "SKILL.md"

// readConcurrency bounds parallel file reads during indexing.
const readConcurrency = 8

// Index is an in-memory catalogue of skills scanned from a file tree.
type Index struct {
	mu     sync.RWMutex
	fsys   fs.FS
	root   string
	skills []SkillInfo
	byName map[string]int
	logger *slog.Logger
}

// NewIndex scans fsys and builds the index. root is used only to report paths.
// A nil fsys produces an empty index.
func NewIndex(ctx context.Context, fsys fs.FS, root string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ix := &Index{fsys: fsys, root: root, logger: logger}
	if err := ix.Reload(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}

// OpenDir indexes the skills under dir. A missing directory yields an empty index.
func OpenDir(ctx context.Context, dir string, logger *slog.Logger) (*Index, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if logger != nil {
				logger.Debug("skills directory not found", "dir", dir)
			}
			return NewIndex(ctx, nil, dir, logger)
		}
		return nil, fmt.Errorf("failed to stat skills directory: %w", err)
	}
	return NewIndex(ctx, os.DirFS(dir), dir, logger)
}

// Root returns the directory label the index was built from.
func (ix *Index) Root() string {
	return ix.root
}

// Reload rescans the file tree and atomically swaps the index contents.
func (ix *Index) Reload(ctx context.Context) error {
	paths, err := discover(ix.fsys)
	if err != nil {
		return fmt.Errorf("failed to scan skills: %w", err)
	}

	results := make([]*SkillInfo, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := ix.load(p)
			if err != nil {
				ix.logger.Warn("skipping skill", "path", p, "error", err)
				return nil
			}
			results[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	skills := make([]SkillInfo, 0, len(results))
	seen := make(map[string]string)
	for _, info := range results {
		if info == nil {
			continue
		}
		if prev, dup := seen[info.Name]; dup {
			ix.logger.Warn("duplicate skill name", "name", info.Name, "kept", prev, "ignored", info.Path)
			continue
		}
		seen[info.Name] = info.Path
		skills = append(skills, *info)
	}
	sort.SliceStable(skills, func(i, j int) bool {
		if skills[i].Priority != skills[j].Priority {
			return skills[i].Priority < skills[j].Priority
		}
		return skills[i].Name < skills[j].Name
	})

	byName := make(map[string]int, len(skills))
	for i, s := range skills {
		byName[s.Name] = i
	}

	ix.mu.Lock()
	ix.skills = skills
	ix.byName = byName
	ix.mu.Unlock()

	ix.logger.Debug("skills indexed", "root", ix.root, "count", len(skills))
	return nil
}

// Skills returns the indexed skills sorted by priority then name.
func (ix *Index) Skills() []SkillInfo {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]SkillInfo, len(ix.skills))
	copy(out, ix.skills)
	return out
}

// Get looks up a skill by name.
func (ix *Index) Get(name string) (SkillInfo, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	i, ok := ix.byName[name]
	if !ok {
		return SkillInfo{}, false
	}
	return ix.skills[i], true
}

// Len returns the number of indexed skills.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.skills)
}

// TotalTokens sums the estimated tokens of every indexed skill.
func (ix *Index) TotalTokens() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	total := 0
	for _, s := range ix.skills {
		total += s.Tokens
	}
	return total
}

func (ix *Index) load(p string) (*SkillInfo, error) {
	raw, err := fs.ReadFile(ix.fsys, p)
	if err != nil {
		return nil, err
	}
	fm, body, err := parseFrontmatter(string(raw))
	if err != nil {
		return nil, err
	}

	info := &SkillInfo{
		Name:        fm.Name,
		Description: fm.Description,
		Path:        filepath.Join(ix.root, filepath.FromSlash(p)),
		Size:        int64(len(raw)),
		Tokens:      budget.EstimateTokens(body),
		Categories:  normalizeCategories(fm.Categories),
		Priority:    fm.Priority,
		Content:     strings.TrimSpace(body),
	}
	if info.Name == "" {
		info.Name = defaultName(p)
	}
	if info.Priority == 0 {
		info.Priority = DefaultPriority
	}
	for _, raw := range fm.Phases {
		ph, err := phase.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("skill %s: %w", info.Name, err)
		}
		info.Phases = append(info.Phases, ph)
	}
	return info, nil
}

// discover lists SKILL.md files at any depth and loose *.md files at the root.
func discover(fsys fs.FS) ([]string, error) {
	if fsys == nil {
		return nil, nil
	}
	var paths []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == SkillFile {
			paths = append(paths, p)
			return nil
		}
		if path.Dir(p) == "." && strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func defaultName(p string) string {
	if path.Base(p) == SkillFile {
		return path.Base(path.Dir(p))
	}
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

func normalizeCategories(in []string) []string {
	var out []string
	for _, c := range in {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
