package scanner

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFiles caps how many files a scan counts.
const DefaultMaxFiles = 10000

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, ".venv": true,
	"venv": true, "__pycache__": true, "dist": true, "build": true,
	"target": true, ".next": true, ".moai": true, ".moai-backups": true,
	".claude": true,
}

// Options tunes a scan.
type Options struct {
	// MaxFiles stops counting after this many files. Zero uses DefaultMaxFiles.
	MaxFiles int
	// Exclude holds doublestar patterns, relative to the root, for files to ignore.
	Exclude []string
}

// Scan walks root and returns its profile. Unreadable entries are skipped.
func Scan(ctx context.Context, root string, opts Options) (*Profile, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	p := &Profile{Name: filepath.Base(abs)}
	extCounts := make(map[string]int)

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != abs && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if p.Files >= maxFiles {
			p.Truncated = true
			return filepath.SkipAll
		}
		if p.Files%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		if excluded(filepath.ToSlash(rel), opts.Exclude) {
			return nil
		}

		p.Files++
		if ext := filepath.Ext(path); ext != "" {
			extCounts[ext]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Languages = rankLanguages(extCounts)
	p.Toolchain = detectToolchain(abs)
	p.Framework = detectFramework(abs)
	detectLayout(abs, p)
	return p, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
