package tag

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 8
	maxFileSize        = 2 << 20
	sniffLen           = 8000
)

// DefaultExclude is used when a Scanner has no exclude patterns.
var DefaultExclude = []string{".git/**", "**/node_modules/**", "**/vendor/**"}

// Scanner finds TAGs in files selected by doublestar patterns.
type Scanner struct {
	Include     []string
	Exclude     []string
	Concurrency int
	Logger      *slog.Logger
}

// NewScanner creates a Scanner. Empty include matches every file; nil exclude
// uses DefaultExclude.
func NewScanner(include, exclude []string, logger *slog.Logger) *Scanner {
	if exclude == nil {
		exclude = DefaultExclude
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{Include: include, Exclude: exclude, Concurrency: defaultConcurrency, Logger: logger}
}

// Scan walks root and returns every TAG found, sorted by ID, category, file
// and line. File paths are relative to root, slash separated. Unreadable,
// oversize and binary files are skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Tag, error) {
	files, err := s.files(ctx, root)
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		tags []Tag
	)
	g, ctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)

	for _, rel := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := s.scanFile(filepath.Join(root, filepath.FromSlash(rel)), rel)
			if err != nil {
				s.Logger.Debug("skipping file", "file", rel, "error", err)
				return nil
			}
			if len(found) > 0 {
				mu.Lock()
				tags = append(tags, found...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	Sort(tags)
	return tags, nil
}

// Sort orders tags by ID, category chain order, file and line.
func Sort(tags []Tag) {
	sort.Slice(tags, func(i, j int) bool {
		a, b := tags[i], tags[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Category != b.Category {
			return categoryRank(a.Category) < categoryRank(b.Category)
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
}

func categoryRank(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

// files lists the slash-separated relative paths selected for scanning.
func (s *Scanner) files(ctx context.Context, root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.prunes(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.matches(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return out, nil
}

func (s *Scanner) matches(rel string) bool {
	for _, p := range s.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(s.Include) == 0 {
		return true
	}
	for _, p := range s.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// prunes reports whether a directory is excluded wholesale by a "dir/**" pattern.
func (s *Scanner) prunes(rel string) bool {
	for _, p := range s.Exclude {
		prefix, ok := strings.CutSuffix(p, "/**")
		if !ok {
			continue
		}
		if match, _ := doublestar.Match(prefix, rel); match {
			return true
		}
	}
	return false
}

func (s *Scanner) scanFile(path, rel string) ([]Tag, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file larger than %d bytes", maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return nil, nil
	}
	if !bytes.Contains(data, []byte("@")) {
		return nil, nil
	}
	return Parse(bytes.NewReader(data), rel)
}
