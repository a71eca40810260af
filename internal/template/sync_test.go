package template

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
}

func testTree() fstest.MapFS {
	return fstest.MapFS{
		"README.md":             {Data: []byte("# {{PROJECT_NAME}}\n")},
		".moai/project/tech.md": {Data: []byte("lang: {{PROJECT_LANGUAGE}}\n")},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestSync_CreateThenUnchanged(t *testing.T) {
	target := t.TempDir()
	vars := map[string]string{"PROJECT_NAME": "demo", "PROJECT_LANGUAGE": "go"}

	res, err := Sync(testTree(), target, vars, SyncOptions{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	wantCreated := []string{".moai/project/tech.md", "README.md"}
	if !reflect.DeepEqual(res.Created, wantCreated) {
		t.Errorf("Created = %v, want %v", res.Created, wantCreated)
	}
	if got := readFile(t, filepath.Join(target, "README.md")); got != "# demo\n" {
		t.Errorf("README.md = %q", got)
	}
	if _, err := os.Stat(ManifestPath(target)); err != nil {
		t.Errorf("manifest not written: %v", err)
	}

	res, err = Sync(testTree(), target, vars, SyncOptions{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed() || len(res.Unchanged) != 2 {
		t.Errorf("second sync = %+v, want two unchanged", res)
	}
	if res.BackupDir != "" {
		t.Errorf("BackupDir = %q, want none", res.BackupDir)
	}
}

func TestSync_TemplateChangeUpdatesWithBackup(t *testing.T) {
	target := t.TempDir()
	if _, err := Sync(testTree(), target, map[string]string{"PROJECT_NAME": "old"}, SyncOptions{Now: fixedNow}); err != nil {
		t.Fatal(err)
	}

	res, err := Sync(testTree(), target, map[string]string{"PROJECT_NAME": "new"}, SyncOptions{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Updated, []string{"README.md"}) {
		t.Fatalf("Updated = %v, want [README.md]", res.Updated)
	}
	if got := readFile(t, filepath.Join(target, "README.md")); got != "# new\n" {
		t.Errorf("README.md = %q", got)
	}

	wantBackup := filepath.Join(target, config.BackupsDir, "20260301-093000")
	if res.BackupDir != wantBackup {
		t.Errorf("BackupDir = %q, want %q", res.BackupDir, wantBackup)
	}
	if got := readFile(t, filepath.Join(wantBackup, "README.md")); got != "# old\n" {
		t.Errorf("backup = %q, want old content", got)
	}
}

func TestSync_SkipsUserModifiedUnlessForced(t *testing.T) {
	target := t.TempDir()
	vars := map[string]string{"PROJECT_NAME": "demo"}
	if _, err := Sync(testTree(), target, vars, SyncOptions{Now: fixedNow}); err != nil {
		t.Fatal(err)
	}

	readme := filepath.Join(target, "README.md")
	if err := os.WriteFile(readme, []byte("# demo\n\nmy notes\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Sync(testTree(), target, vars, SyncOptions{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"README.md"}) {
		t.Fatalf("Skipped = %v, want [README.md]", res.Skipped)
	}
	if !strings.Contains(readFile(t, readme), "my notes") {
		t.Error("user edits were overwritten without force")
	}

	// The skip must not forget the original hash, or the next run would
	// treat the edit as unmodified.
	res, err = Sync(testTree(), target, vars, SyncOptions{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 1 {
		t.Errorf("repeat sync Skipped = %v, want README.md again", res.Skipped)
	}

	res, err = Sync(testTree(), target, vars, SyncOptions{Force: true, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Updated, []string{"README.md"}) {
		t.Fatalf("forced Updated = %v, want [README.md]", res.Updated)
	}
	if got := readFile(t, readme); got != "# demo\n" {
		t.Errorf("README.md = %q after force", got)
	}
	if !strings.Contains(readFile(t, filepath.Join(res.BackupDir, "README.md")), "my notes") {
		t.Error("forced overwrite did not back up the user's version")
	}
}

func TestSync_PreexistingFileWithoutManifestIsUserOwned(t *testing.T) {
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "README.md"), []byte("hand written\n"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := Sync(testTree(), target, map[string]string{"PROJECT_NAME": "demo"}, SyncOptions{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"README.md"}) {
		t.Errorf("Skipped = %v, want [README.md]", res.Skipped)
	}
}

func TestSync_DryRun(t *testing.T) {
	target := t.TempDir()
	res, err := Sync(testTree(), target, nil, SyncOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Created) != 2 {
		t.Errorf("Created = %v, want 2 entries", res.Created)
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries", len(entries))
	}
}

func TestScaffold(t *testing.T) {
	target := t.TempDir()
	cfg := config.Defaults()
	cfg.Project.Name = "demo"
	vars := MergeVariables(ConfigVariables(cfg), map[string]string{VarBuildCommand: "go build ./..."})

	res, err := Sync(Scaffold(), target, vars, SyncOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{".claude/settings.json", ".moai/project/tech.md", ".moai/.gitignore"} {
		found := false
		for _, c := range res.Created {
			if c == want {
				found = true
			}
		}
		if !found {
			t.Errorf("scaffold did not create %s (created %v)", want, res.Created)
		}
	}

	tech := readFile(t, filepath.Join(target, ".moai", "project", "tech.md"))
	if !strings.Contains(tech, "# demo Technology") || !strings.Contains(tech, "`go build ./...`") {
		t.Errorf("tech.md not rendered:\n%s", tech)
	}
	if left := Placeholders(tech); len(left) != 0 {
		t.Errorf("unresolved placeholders in tech.md: %v", left)
	}
}

func TestProfileVariables(t *testing.T) {
	if ProfileVariables(nil) != nil {
		t.Error("nil profile should yield nil")
	}

	p := &scanner.Profile{
		Languages:  []scanner.Language{{Name: "Go", Code: "go"}},
		Toolchain:  scanner.Toolchain{Name: "go", Build: []string{"go build ./...", "make"}, Test: []string{"go test ./..."}},
		SourceDirs: []string{"cmd", "internal"},
	}
	vars := ProfileVariables(p)
	want := map[string]string{
		VarProjectLanguage: "Go",
		VarFramework:       "n/a",
		VarBuildCommand:    "go build ./...",
		VarTestCommand:     "go test ./...",
		VarLintCommand:     "n/a",
		VarSourceDirs:      "cmd, internal",
		VarTestDirs:        "n/a",
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("%s = %q, want %q", k, vars[k], v)
		}
	}
}
