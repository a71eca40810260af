package claudemd

const claudeMDTemplate = StartMarker + `
# {{.Name}}

> Managed by MoAI-ADK {{.Version}}. Edit outside the generated markers; this block is rewritten by ` + "`moai init`" + ` and ` + "`moai update --sync`" + `.

## Workflow

Follow the SPEC -> RED -> GREEN -> REFACTOR -> SYNC loop:

1. ` + "`/moai:1-plan`" + ` writes an EARS requirement to ` + "`.moai/specs/SPEC-<ID>/spec.md`" + ` tagged ` + "`@SPEC:<ID>`" + `.
2. ` + "`/moai:2-run`" + ` drives RED (failing ` + "`@TEST:<ID>`" + `), GREEN (minimal ` + "`@CODE:<ID>`" + `) and REFACTOR.
3. ` + "`/moai:3-sync`" + ` updates documents (` + "`@DOC:<ID>`" + `) and checks the TAG chain with ` + "`moai tag validate`" + `.

Project mode: **{{.Mode}}**. Reply in ` + "`{{.Conversation}}`" + `.
{{- if .Profile}}

## Project Overview
{{- if .Profile.Framework}}

**Framework:** {{.Profile.Framework}}
{{- end}}
{{- if .Profile.Languages}}

**Languages:** {{range $i, $l := .Profile.Languages}}{{if $i}}, {{end}}{{$l.Name}} ({{printf "%.0f" $l.Share}}%){{end}}
{{- end}}
{{- if .Profile.Toolchain.Name}}

**Build System:** {{.Profile.Toolchain.Name}}
{{- end}}
{{- if .Profile.SourceDirs}}

**Source:** {{range $i, $d := .Profile.SourceDirs}}{{if $i}}, {{end}}` + "`{{$d}}/`" + `{{end}}
{{- end}}
{{- if .Profile.TestDirs}}

**Tests:** {{range $i, $d := .Profile.TestDirs}}{{if $i}}, {{end}}` + "`{{$d}}/`" + `{{end}}
{{- end}}
{{- if .Profile.CI}}

**CI:** {{.Profile.CI}}
{{- end}}
{{- with .Profile.Toolchain}}
{{- if or .Build .Test .Lint}}

## Commands

` + "```bash" + `
{{- range .Build}}
{{.}}
{{- end}}
{{- range .Test}}
{{.}}
{{- end}}
{{- range .Lint}}
{{.}}
{{- end}}
` + "```" + `
{{- end}}
{{- end}}
{{- end}}
{{- if .Skills}}

## Skills

Skills in ` + "`.claude/skills/`" + ` are loaded per phase by the context loader.

| Skill | Phases | Description |
|-------|--------|-------------|
{{- range .Skills}}
| {{.Name}} | {{phases .}} | {{.Description}} |
{{- end}}
{{- end}}

## Guardrails

- Never write to protected paths: {{range $i, $p := .Protected}}{{if $i}}, {{end}}` + "`{{$p}}`" + `{{end}}.
- Keep every change traceable to a SPEC ID.
` + EndMarker + "\n"

const defaultCustomSection = `
## Custom Instructions

Add project-specific guidance below. It is preserved when the block above is regenerated.
`
