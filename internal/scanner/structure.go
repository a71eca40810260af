package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var sourceDirNames = map[string]bool{
	"src": true, "lib": true, "pkg": true, "internal": true,
	"app": true, "cmd": true, "core": true,
}

var testDirNames = map[string]bool{
	"test": true, "tests": true, "spec": true, "__tests__": true,
	"testdata": true, "e2e": true, "integration": true,
}

// ciMarkers is checked in order.
var ciMarkers = []struct {
	path string
	name string
}{
	{".github/workflows", "github-actions"},
	{".gitlab-ci.yml", "gitlab-ci"},
	{".circleci/config.yml", "circleci"},
	{"Jenkinsfile", "jenkins"},
	{"azure-pipelines.yml", "azure-pipelines"},
}

// frameworks maps a dependency substring in a manifest to a framework name,
// first match wins.
var frameworks = map[string][]struct {
	needle string
	name   string
}{
	"go.mod": {
		{"github.com/gin-gonic/gin", "gin"},
		{"github.com/labstack/echo", "echo"},
		{"github.com/gofiber/fiber", "fiber"},
		{"github.com/go-chi/chi", "chi"},
		{"github.com/spf13/cobra", "cobra"},
	},
	"package.json": {
		{`"next"`, "next"},
		{`"nuxt"`, "nuxt"},
		{`"@nestjs/core"`, "nestjs"},
		{`"react"`, "react"},
		{`"vue"`, "vue"},
		{`"express"`, "express"},
	},
	"pyproject.toml": {
		{"django", "django"},
		{"fastapi", "fastapi"},
		{"flask", "flask"},
	},
	"requirements.txt": {
		{"django", "django"},
		{"fastapi", "fastapi"},
		{"flask", "flask"},
	},
	"Cargo.toml": {
		{"axum", "axum"},
		{"actix-web", "actix"},
	},
}

// manifestOrder fixes the order manifests are consulted in.
var manifestOrder = []string{"go.mod", "package.json", "pyproject.toml", "requirements.txt", "Cargo.toml"}

// detectLayout records well-known top-level source and test directories.
func detectLayout(root string, p *Profile) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if sourceDirNames[e.Name()] {
			p.SourceDirs = append(p.SourceDirs, e.Name())
		}
		if testDirNames[e.Name()] {
			p.TestDirs = append(p.TestDirs, e.Name())
		}
	}
	sort.Strings(p.SourceDirs)
	sort.Strings(p.TestDirs)

	for _, m := range ciMarkers {
		if fileExists(filepath.Join(root, filepath.FromSlash(m.path))) {
			p.CI = m.name
			break
		}
	}
	p.HasGit = dirExists(filepath.Join(root, ".git"))
}

func detectFramework(root string) string {
	for _, manifest := range manifestOrder {
		data, err := os.ReadFile(filepath.Join(root, manifest))
		if err != nil {
			continue
		}
		content := strings.ToLower(string(data))
		for _, fw := range frameworks[manifest] {
			if strings.Contains(content, strings.ToLower(fw.needle)) {
				return fw.name
			}
		}
	}
	return ""
}
