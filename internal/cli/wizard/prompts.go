// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
)

// ConfirmProject presents the detected project profile and lets the user
// adjust the settings moai init writes. cfg and p are updated in place.
func ConfirmProject(cfg *config.Config, p *scanner.Profile) error {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Detected Project").
				Description(fmt.Sprintf(
					"Project: %s\nLanguages: %s\nToolchain: %s\nFramework: %s",
					cfg.Project.Name, formatLanguages(p.Languages), orUnknown(p.Toolchain.Name), orUnknown(p.Framework),
				)),

			huh.NewConfirm().
				Title("Is this correct?").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}
	if !confirmed {
		if err := editProfile(cfg, p); err != nil {
			return err
		}
	}
	return promptSettings(cfg)
}

func editProfile(cfg *config.Config, p *scanner.Profile) error {
	buildCmds := strings.Join(p.Toolchain.Build, ", ")
	testCmds := strings.Join(p.Toolchain.Test, ", ")
	lintCmds := strings.Join(p.Toolchain.Lint, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project Name").
				Value(&cfg.Project.Name).
				Validate(required("project name")),

			huh.NewInput().
				Title("Framework (optional)").
				Value(&p.Framework),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Build Commands (comma-separated)").
				Value(&buildCmds),

			huh.NewInput().
				Title("Test Commands (comma-separated)").
				Value(&testCmds),

			huh.NewInput().
				Title("Lint Commands (comma-separated)").
				Value(&lintCmds),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}

	p.Toolchain.Build = parseCommands(buildCmds)
	p.Toolchain.Test = parseCommands(testCmds)
	p.Toolchain.Lint = parseCommands(lintCmds)
	return nil
}

func promptSettings(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Project Mode").
				Options(
					huh.NewOption("Personal - local SPECs, no PR workflow", "personal"),
					huh.NewOption("Team - SPEC review through pull requests", "team"),
				).
				Value(&cfg.Project.Mode),

			huh.NewSelect[string]().
				Title("Conversation Language").
				Options(
					huh.NewOption("English", "en"),
					huh.NewOption("한국어", "ko"),
					huh.NewOption("日本語", "ja"),
					huh.NewOption("中文", "zh"),
				).
				Value(&cfg.Language.Conversation),

			huh.NewInput().
				Title("Your Name (optional)").
				Value(&cfg.User.Name),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}
	return nil
}

// ConfirmRegeneration asks user to confirm regeneration when custom content exists.
func ConfirmRegeneration(hasCustomContent bool) (bool, error) {
	if !hasCustomContent {
		return true, nil
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Existing CLAUDE.md Found").
				Description("Content outside the moai:generated markers will be preserved. The generated block will be replaced."),

			huh.NewConfirm().
				Title("Continue with regeneration?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func formatLanguages(languages []scanner.Language) string {
	if len(languages) == 0 {
		return "Unknown"
	}
	var parts []string
	for _, lang := range languages {
		parts = append(parts, fmt.Sprintf("%s (%.0f%%)", lang.Name, lang.Share))
	}
	return strings.Join(parts, ", ")
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func parseCommands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
