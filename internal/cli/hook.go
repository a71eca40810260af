package cli

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/hooks"
	"github.com/modu-ai/moai-adk/internal/jit"
)

var hookCmd = &cobra.Command{
	Use:   "hook <event>",
	Short: "Handle a Claude Code hook event",
	Long: `Handle a Claude Code hook event. The event payload is read as JSON from
stdin and the response is written as JSON to stdout.

Events: ` + strings.Join(hookEventNames(), ", ") + `

A failing handler never blocks Claude Code: errors are logged to stderr and
the event continues.

Example (.claude/settings.json):
  "command": "moai hook user-prompt-submit"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: hookEventNames(),
	RunE:      runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func hookEventNames() []string {
	var names []string
	for _, e := range hooks.Events() {
		names = append(names, e.CLIName())
	}
	return names
}

func runHook(cmd *cobra.Command, args []string) error {
	event, err := hooks.ParseEvent(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	in, err := hooks.ReadInput(cmd.InOrStdin())
	if err != nil {
		newLogger(cmd, nil).Warn("hook input ignored", "event", event, "error", err)
		in = &hooks.Input{}
	}

	dir := in.Cwd
	if dir == "" || workDir != "" {
		if dir, err = startDir(); err != nil {
			return hooks.WriteOutput(out, event, hooks.Pass())
		}
	}

	p, err := loadProject(cmd, config.FindProjectRoot(dir))
	if err != nil {
		newLogger(cmd, nil).Warn("hook skipped", "event", event, "error", err)
		return hooks.WriteOutput(out, event, hooks.Pass())
	}

	d, closeAll := newDispatcher(ctx, p)
	res := d.Dispatch(ctx, event, in)
	closeAll()
	return hooks.WriteOutput(out, event, res)
}

// newDispatcher registers the built-in handlers for p. The returned func
// persists the context cache and closes the event log.
func newDispatcher(ctx context.Context, p *project) (*hooks.Dispatcher, func()) {
	d := hooks.NewDispatcher(p.cfg.Hooks.HookTimeout(), p.logger)
	var closers []func() error

	if p.cfg.Hooks.LogEvents {
		eventLog, err := hooks.OpenEventLog(filepath.Join(p.root, filepath.FromSlash(config.LogsDir)))
		if err != nil {
			p.logger.Warn("hook event log disabled", "error", err)
		} else {
			d.SetEventLog(eventLog)
			closers = append(closers, eventLog.Close)
		}
	}

	d.Register(hooks.PreToolUse, hooks.ProtectPaths(p.root, p.cfg.Hooks.ProtectedPaths))

	loader, ix, err := jit.Open(ctx, p.root, p.cfg, p.logger)
	if err != nil {
		p.logger.Warn("context loader unavailable", "error", err)
		d.Register(hooks.SessionStart, hooks.SessionSummary(p.root, p.cfg, func() int { return 0 }))
	} else {
		d.Register(hooks.SessionStart, hooks.SessionSummary(p.root, p.cfg, ix.Len))
		d.Register(hooks.UserPromptSubmit, hooks.InjectContext(loader))
		d.Register(hooks.PostToolUse, hooks.ReloadSkills(p.root, relSkillsDir(p), func(ctx context.Context) error {
			if err := ix.Reload(ctx); err != nil {
				return err
			}
			loader.Refresh()
			return nil
		}))
		d.Register(hooks.SessionEnd, hooks.OnSessionEnd("context-snapshot", loader.Close))
		closers = append([]func() error{loader.Close}, closers...)
	}

	return d, func() {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		if err := errors.Join(errs...); err != nil {
			p.logger.Warn("hook cleanup failed", slog.Any("error", err))
		}
	}
}

func relSkillsDir(p *project) string {
	rel, err := filepath.Rel(p.root, p.skillsDir())
	if err != nil {
		return p.cfg.Skills.Dir
	}
	return filepath.ToSlash(rel)
}
