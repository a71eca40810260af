package scanner

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// toolchainRule detects a build system by the presence of any marker file.
// Rules are checked in order; the first match wins.
type toolchainRule struct {
	markers []string
	detect  func(root string) Toolchain
}

var toolchainRules = []toolchainRule{
	{[]string{"go.mod"}, detectGo},
	{[]string{"package.json"}, detectNode},
	{[]string{"Cargo.toml"}, fixed(Toolchain{Name: "cargo", Build: []string{"cargo build"}, Test: []string{"cargo test"}, Lint: []string{"cargo clippy"}})},
	{[]string{"pyproject.toml"}, detectPyproject},
	{[]string{"requirements.txt", "setup.py"}, fixed(Toolchain{Name: "pip", Build: []string{"pip install -r requirements.txt"}, Test: []string{"pytest"}, Lint: []string{"ruff check ."}})},
	{[]string{"pom.xml"}, fixed(Toolchain{Name: "maven", Build: []string{"mvn compile"}, Test: []string{"mvn test"}})},
	{[]string{"build.gradle", "build.gradle.kts"}, fixed(Toolchain{Name: "gradle", Build: []string{"./gradlew build"}, Test: []string{"./gradlew test"}, Lint: []string{"./gradlew check"}})},
	{[]string{"Gemfile"}, fixed(Toolchain{Name: "bundler", Build: []string{"bundle install"}, Test: []string{"bundle exec rspec"}, Lint: []string{"bundle exec rubocop"}})},
	{[]string{"mix.exs"}, fixed(Toolchain{Name: "mix", Build: []string{"mix compile"}, Test: []string{"mix test"}, Lint: []string{"mix credo"}})},
	{[]string{"Makefile"}, detectMake},
}

func fixed(t Toolchain) func(string) Toolchain {
	return func(string) Toolchain { return t }
}

// detectToolchain returns the toolchain of the first matching rule.
func detectToolchain(root string) Toolchain {
	for _, r := range toolchainRules {
		for _, m := range r.markers {
			if fileExists(filepath.Join(root, m)) {
				return r.detect(root)
			}
		}
	}
	return Toolchain{}
}

func detectGo(root string) Toolchain {
	t := Toolchain{
		Name:  "go",
		Build: []string{"go build ./..."},
		Test:  []string{"go test ./..."},
		Lint:  []string{"go vet ./..."},
	}
	if fileExists(filepath.Join(root, ".golangci.yml")) || fileExists(filepath.Join(root, ".golangci.yaml")) {
		t.Lint = []string{"golangci-lint run"}
	}
	return preferMake(root, t)
}

func detectNode(root string) Toolchain {
	t := Toolchain{Name: "npm"}
	switch {
	case fileExists(filepath.Join(root, "pnpm-lock.yaml")):
		t.Name = "pnpm"
	case fileExists(filepath.Join(root, "yarn.lock")):
		t.Name = "yarn"
	case fileExists(filepath.Join(root, "bun.lockb")):
		t.Name = "bun"
	}

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return t
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return t
	}

	runner := t.Name + " run"
	pick := func(names ...string) []string {
		for _, n := range names {
			if _, ok := pkg.Scripts[n]; ok {
				return []string{runner + " " + n}
			}
		}
		return nil
	}
	t.Build = pick("build", "compile")
	t.Test = pick("test", "test:unit", "vitest", "jest")
	t.Lint = pick("lint", "eslint", "check")
	return t
}

func detectPyproject(root string) Toolchain {
	t := Toolchain{Name: "pip", Build: []string{"pip install -e ."}, Test: []string{"pytest"}, Lint: []string{"ruff check ."}}
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return t
	}
	switch content := string(data); {
	case fileExists(filepath.Join(root, "uv.lock")):
		t.Name = "uv"
		t.Build = []string{"uv sync"}
		t.Test = []string{"uv run pytest"}
	case strings.Contains(content, "[tool.poetry]"):
		t.Name = "poetry"
		t.Build = []string{"poetry install"}
		t.Test = []string{"poetry run pytest"}
	}
	return t
}

func detectMake(root string) Toolchain {
	return preferMake(root, Toolchain{Name: "make"})
}

// preferMake swaps in make targets when a Makefile defines them.
func preferMake(root string, t Toolchain) Toolchain {
	targets := makeTargets(filepath.Join(root, "Makefile"))
	if len(targets) == 0 {
		return t
	}
	use := func(current []string, names ...string) []string {
		for _, n := range names {
			if slices.Contains(targets, n) {
				return []string{"make " + n}
			}
		}
		return current
	}
	t.Build = use(t.Build, "build", "all")
	t.Test = use(t.Test, "test", "check")
	t.Lint = use(t.Lint, "lint", "vet")
	return t
}

var makeTargetRe = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)\s*:([^=]|$)`)

func makeTargets(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var targets []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if m := makeTargetRe.FindStringSubmatch(sc.Text()); m != nil {
			targets = append(targets, m[1])
		}
	}
	return targets
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
