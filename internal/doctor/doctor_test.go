package doctor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/version"
)

func fakeLookPath(found ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("not found")
	}
}

func find(t *testing.T, r *Report, name string) Check {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not in report: %+v", name, r.Checks)
	return Check{}
}

func initProject(t *testing.T, templateVersion string) string {
	t.Helper()
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.Project.Name = "demo"
	cfg.MoAI.TemplateVersion = templateVersion
	if err := config.Save(root, cfg); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRun_HealthyProject(t *testing.T) {
	root := initProject(t, version.TemplateVersion)
	skillDir := filepath.Join(root, ".claude", "skills", "moai-demo")
	if err := os.MkdirAll(skillDir, 0755); err != nil {
		t.Fatal(err)
	}
	skill := "---\nname: moai-demo\ndescription: demo\nphases: [RED]\n---\nbody\n"
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(skill), 0644); err != nil {
		t.Fatal(err)
	}

	r := Run(context.Background(), Options{
		Root:     root,
		LookPath: fakeLookPath("git", "claude"),
		SkipHost: true,
	})

	if !r.OK() {
		t.Fatalf("report not OK: %+v", r.Checks)
	}
	for _, name := range []string{"tool: git", "tool: claude", "project", "config", "templates", "skills", "cache"} {
		if c := find(t, r, name); c.Status != StatusOK {
			t.Errorf("%s = %s (%s), want ok", name, c.Status, c.Detail)
		}
	}
	if c := find(t, r, "git"); c.Status != StatusWarn {
		t.Errorf("git = %s, want warn outside a repository", c.Status)
	}
	if _, err := os.Stat(filepath.Join(root, ".moai", "cache")); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestRun_Problems(t *testing.T) {
	root := t.TempDir()
	r := Run(context.Background(), Options{
		Root:     root,
		LookPath: fakeLookPath(),
		SkipHost: true,
	})

	if r.OK() {
		t.Fatal("report should fail")
	}
	tests := map[string]Status{
		"tool: git":    StatusFail,
		"tool: claude": StatusWarn,
		"project":      StatusFail,
		"config":       StatusWarn,
		"templates":    StatusWarn,
		"skills":       StatusWarn,
	}
	for name, want := range tests {
		if c := find(t, r, name); c.Status != want {
			t.Errorf("%s = %s, want %s", name, c.Status, want)
		}
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	path := config.ProjectConfigPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"project":{"mode":"solo"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	r := Run(context.Background(), Options{Root: root, LookPath: fakeLookPath("git"), SkipHost: true})
	if c := find(t, r, "config"); c.Status != StatusFail || !strings.Contains(c.Detail, "mode") {
		t.Errorf("config = %+v", c)
	}
	for _, c := range r.Checks {
		if c.Name == "skills" || c.Name == "templates" {
			t.Errorf("%s should be skipped without a valid config", c.Name)
		}
	}
}

func TestRun_StaleTemplates(t *testing.T) {
	root := initProject(t, "0.0.1")
	r := Run(context.Background(), Options{Root: root, LookPath: fakeLookPath("git"), SkipHost: true})
	if c := find(t, r, "templates"); c.Status != StatusWarn || !strings.Contains(c.Detail, "moai update --sync") {
		t.Errorf("templates = %+v", c)
	}
}

func TestReport_Render(t *testing.T) {
	r := &Report{
		Checks: []Check{
			{Name: "tool: git", Status: StatusOK, Detail: "/usr/bin/git"},
			{Name: "project", Status: StatusFail, Detail: ".moai/ missing"},
		},
		Host: HostInfo{OS: "linux", Arch: "amd64", GoVersion: "go1.24.0", CPUs: 8, MemoryTotal: 16 << 30},
	}
	var buf bytes.Buffer
	r.Render(&buf, false)
	out := buf.String()

	for _, want := range []string{"tool: git", "/usr/bin/git", "fail", "16.0 GiB", "1 ok, 0 warnings, 1 failures"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
