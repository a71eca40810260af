package template

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/modu-ai/moai-adk/internal/config"
	"github.com/modu-ai/moai-adk/internal/scanner"
	"github.com/modu-ai/moai-adk/internal/version"
)

//go:embed all:scaffold
var scaffoldFS embed.FS

// Scaffold returns the embedded project template tree rooted at the project
// directory, e.g. ".claude/settings.json".
func Scaffold() fs.FS {
	sub, err := fs.Sub(scaffoldFS, "scaffold")
	if err != nil {
		panic(err)
	}
	return sub
}

// Variable names understood by the scaffold.
const (
	VarProjectName          = "PROJECT_NAME"
	VarProjectDescription   = "PROJECT_DESCRIPTION"
	VarProjectMode          = "PROJECT_MODE"
	VarProjectLanguage      = "PROJECT_LANGUAGE"
	VarConversationLanguage = "CONVERSATION_LANGUAGE"
	VarUserName             = "USER_NAME"
	VarMoaiVersion          = "MOAI_VERSION"
	VarTemplateVersion      = "TEMPLATE_VERSION"
	VarFramework            = "FRAMEWORK"
	VarBuildCommand         = "BUILD_COMMAND"
	VarTestCommand          = "TEST_COMMAND"
	VarLintCommand          = "LINT_COMMAND"
	VarSourceDirs           = "SOURCE_DIRS"
	VarTestDirs             = "TEST_DIRS"
)

// notDetected fills scaffold fields nothing could infer.
const notDetected = "n/a"

// ConfigVariables derives the built-in variables from cfg.
func ConfigVariables(cfg *config.Config) map[string]string {
	desc := cfg.Project.Description
	if desc == "" {
		desc = "Describe the mission of " + cfg.Project.Name + "."
	}
	return map[string]string{
		VarProjectName:          cfg.Project.Name,
		VarProjectDescription:   desc,
		VarProjectMode:          cfg.Project.Mode,
		VarProjectLanguage:      orNA(cfg.Project.Language),
		VarConversationLanguage: cfg.Language.Conversation,
		VarUserName:             cfg.User.Name,
		VarMoaiVersion:          version.Short(),
		VarTemplateVersion:      version.TemplateVersion,
		VarFramework:            notDetected,
		VarBuildCommand:         notDetected,
		VarTestCommand:          notDetected,
		VarLintCommand:          notDetected,
		VarSourceDirs:           notDetected,
		VarTestDirs:             notDetected,
	}
}

// ProfileVariables derives the variables a project scan can fill. A nil
// profile yields nil.
func ProfileVariables(p *scanner.Profile) map[string]string {
	if p == nil {
		return nil
	}
	vars := map[string]string{
		VarFramework:    orNA(p.Framework),
		VarBuildCommand: firstOrNA(p.Toolchain.Build),
		VarTestCommand:  firstOrNA(p.Toolchain.Test),
		VarLintCommand:  firstOrNA(p.Toolchain.Lint),
		VarSourceDirs:   JoinList(p.SourceDirs),
		VarTestDirs:     JoinList(p.TestDirs),
	}
	if lang := p.PrimaryLanguage(); lang != "" {
		vars[VarProjectLanguage] = lang
	}
	return vars
}

// JoinList renders a list variable, or "n/a" when empty.
func JoinList(items []string) string {
	if len(items) == 0 {
		return notDetected
	}
	return strings.Join(items, ", ")
}

func orNA(s string) string {
	if s == "" {
		return notDetected
	}
	return s
}

func firstOrNA(items []string) string {
	if len(items) == 0 {
		return notDetected
	}
	return items[0]
}
