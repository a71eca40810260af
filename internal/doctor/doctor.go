// Package doctor diagnoses a MoAI project and its host environment.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/gitinfo"
	"github.com/modu-ai/moai-adk/internal/skills"
	"github.com/modu-ai/moai-adk/internal/version"
)

// Status is the outcome of one check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one diagnostic line.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report collects every check plus host information.
type Report struct {
	Root   string   `json:"root"`
	Checks []Check  `json:"checks"`
	Host   HostInfo `json:"host"`
}

// OK reports whether no check failed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Counts returns the number of checks per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int, 3)
	for _, c := range r.Checks {
		counts[c.Status]++
	}
	return counts
}

// Tool is an executable looked up on PATH. Missing required tools fail the
// report; optional ones only warn.
type Tool struct {
	Name     string
	Required bool
}

// DefaultTools are the executables moai expects.
var DefaultTools = []Tool{
	{Name: "git", Required: true},
	{Name: "claude"},
}

// Options configures a diagnosis.
type Options struct {
	Root       string
	ConfigFile string
	Tools      []Tool
	LookPath   func(file string) (string, error)
	SkipHost   bool
}

// Run performs every check against opts.Root.
func Run(ctx context.Context, opts Options) *Report {
	if opts.Tools == nil {
		opts.Tools = DefaultTools
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}

	r := &Report{Root: opts.Root}
	for _, t := range opts.Tools {
		r.Checks = append(r.Checks, checkTool(t, opts.LookPath))
	}

	r.Checks = append(r.Checks, checkProject(opts.Root))
	cfg, c := checkConfig(opts.Root, opts.ConfigFile)
	r.Checks = append(r.Checks, c)
	if cfg != nil {
		r.Checks = append(r.Checks, checkTemplates(cfg))
		r.Checks = append(r.Checks, checkSkills(ctx, opts.Root, cfg))
	}
	r.Checks = append(r.Checks, checkCacheDir(opts.Root))
	r.Checks = append(r.Checks, checkGit(opts.Root))

	if !opts.SkipHost {
		r.Host = collectHost(ctx, opts.Root)
	}
	return r
}

func checkTool(t Tool, lookPath func(string) (string, error)) Check {
	name := "tool: " + t.Name
	p, err := lookPath(t.Name)
	if err != nil {
		st := StatusWarn
		if t.Required {
			st = StatusFail
		}
		return Check{Name: name, Status: st, Detail: "not found on PATH"}
	}
	return Check{Name: name, Status: StatusOK, Detail: p}
}

func checkProject(root string) Check {
	if !config.IsProject(root) {
		return Check{Name: "project", Status: StatusFail, Detail: ".moai/ missing, run 'moai init'"}
	}
	return Check{Name: "project", Status: StatusOK, Detail: filepath.Join(root, config.MoaiDir)}
}

func checkConfig(root, explicit string) (*config.Config, Check) {
	cfg, err := config.Load(root, config.LoadOptions{ExplicitFile: explicit})
	if err != nil {
		return nil, Check{Name: "config", Status: StatusFail, Detail: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, Check{Name: "config", Status: StatusFail, Detail: err.Error()}
	}
	if _, err := os.Stat(config.ProjectConfigPath(root)); errors.Is(err, os.ErrNotExist) {
		return cfg, Check{Name: "config", Status: StatusWarn, Detail: "no project config, using defaults"}
	}
	return cfg, Check{Name: "config", Status: StatusOK, Detail: config.ProjectConfigPath(root)}
}

func checkTemplates(cfg *config.Config) Check {
	have := cfg.MoAI.TemplateVersion
	if have == "" {
		return Check{Name: "templates", Status: StatusWarn, Detail: "template version unknown"}
	}
	if have != version.TemplateVersion {
		return Check{
			Name:   "templates",
			Status: StatusWarn,
			Detail: fmt.Sprintf("project has %s, binary ships %s; run 'moai update --sync'", have, version.TemplateVersion),
		}
	}
	return Check{Name: "templates", Status: StatusOK, Detail: have}
}

func checkSkills(ctx context.Context, root string, cfg *config.Config) Check {
	dir := cfg.Skills.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	ix, err := skills.OpenDir(ctx, dir, nil)
	if err != nil {
		return Check{Name: "skills", Status: StatusFail, Detail: err.Error()}
	}
	if ix.Len() == 0 {
		if cfg.Skills.Builtins {
			return Check{Name: "skills", Status: StatusWarn, Detail: "no project skills, built-in set in use"}
		}
		return Check{Name: "skills", Status: StatusWarn, Detail: "no skills indexed"}
	}
	return Check{Name: "skills", Status: StatusOK, Detail: fmt.Sprintf("%d skills, ~%d tokens", ix.Len(), ix.TotalTokens())}
}

func checkCacheDir(root string) Check {
	dir := filepath.Join(root, filepath.FromSlash(config.CacheDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Check{Name: "cache", Status: StatusFail, Detail: err.Error()}
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return Check{Name: "cache", Status: StatusFail, Detail: "not writable: " + err.Error()}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return Check{Name: "cache", Status: StatusOK, Detail: dir}
}

func checkGit(root string) Check {
	branch, err := gitinfo.Branch(root)
	if err != nil {
		return Check{Name: "git", Status: StatusWarn, Detail: err.Error()}
	}
	return Check{Name: "git", Status: StatusOK, Detail: "branch " + branch}
}
