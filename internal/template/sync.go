package template

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/version"
)

// ManifestFile records the hash of every file Sync last wrote, so later runs
// can tell template updates apart from user edits.
const ManifestFile = "template-manifest.json"

const backupTimeFormat = "20060102-150405"

// SyncOptions controls Sync.
type SyncOptions struct {
	// Force overwrites user-modified files after backing them up.
	Force bool
	// DryRun reports what would change without touching the filesystem.
	DryRun bool
	// Now stamps the backup directory. Nil uses time.Now.
	Now func() time.Time
}

// SyncResult lists what Sync did, by slash-separated path relative to the target.
type SyncResult struct {
	Created   []string `json:"created,omitempty"`
	Updated   []string `json:"updated,omitempty"`
	Unchanged []string `json:"unchanged,omitempty"`
	Skipped   []string `json:"skipped,omitempty"`
	BackupDir string   `json:"backup_dir,omitempty"`
}

// Changed reports whether any file was created or updated.
func (r *SyncResult) Changed() bool {
	return len(r.Created) > 0 || len(r.Updated) > 0
}

type manifest struct {
	TemplateVersion string            `json:"template_version"`
	Files           map[string]string `json:"files"`
}

// ManifestPath returns the manifest location for a project root.
func ManifestPath(target string) string {
	return filepath.Join(target, filepath.FromSlash(config.ConfigDir), ManifestFile)
}

// Sync renders every file in src with vars and writes it under target.
// Missing files are created. A file whose content differs is updated when it
// still matches what the last sync wrote; otherwise the user has edited it and
// it is skipped unless opts.Force is set. Every overwritten file is first
// copied to .moai-backups/<timestamp>/.
func Sync(src fs.FS, target string, vars map[string]string, opts SyncOptions) (*SyncResult, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	prev, err := readManifest(ManifestPath(target))
	if err != nil {
		return nil, err
	}
	next := manifest{TemplateVersion: version.TemplateVersion, Files: make(map[string]string)}
	result := &SyncResult{}
	stamp := now().Format(backupTimeFormat)

	err = fs.WalkDir(src, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		raw, err := fs.ReadFile(src, rel)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", rel, err)
		}
		rendered := []byte(Render(string(raw), vars))
		sum := digest(rendered)
		dest := filepath.Join(target, filepath.FromSlash(rel))

		current, err := os.ReadFile(dest)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := write(dest, rendered, opts.DryRun); err != nil {
				return err
			}
			result.Created = append(result.Created, rel)
			next.Files[rel] = sum
			return nil
		case err != nil:
			return fmt.Errorf("failed to read %s: %w", dest, err)
		}

		currentSum := digest(current)
		if currentSum == sum {
			result.Unchanged = append(result.Unchanged, rel)
			next.Files[rel] = sum
			return nil
		}

		userModified := prev.Files[rel] != currentSum
		if userModified && !opts.Force {
			result.Skipped = append(result.Skipped, rel)
			if recorded, ok := prev.Files[rel]; ok {
				next.Files[rel] = recorded
			}
			return nil
		}

		backupDir := filepath.Join(target, config.BackupsDir, stamp)
		if !opts.DryRun {
			if err := write(filepath.Join(backupDir, filepath.FromSlash(rel)), current, false); err != nil {
				return fmt.Errorf("failed to back up %s: %w", rel, err)
			}
		}
		result.BackupDir = backupDir
		if err := write(dest, rendered, opts.DryRun); err != nil {
			return err
		}
		result.Updated = append(result.Updated, rel)
		next.Files[rel] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		if err := writeManifest(ManifestPath(target), next); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func write(path string, data []byte, dryRun bool) error {
	if dryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readManifest(path string) (manifest, error) {
	m := manifest{Files: map[string]string{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("failed to read template manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		// Corrupt manifest: every differing file counts as user-modified.
		return manifest{Files: map[string]string{}}, nil
	}
	if m.Files == nil {
		m.Files = map[string]string{}
	}
	return m, nil
}

func writeManifest(path string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return write(path, append(data, '\n'), false)
}
