package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	if result := Short(); result != Version {
		t.Errorf("Short() = %q, want %q", result, Version)
	}
}

func TestInfo(t *testing.T) {
	result := Info()

	for _, want := range []string{"moai", Version, "commit:", "built:", runtime.Version()} {
		if !strings.Contains(result, want) {
			t.Errorf("Info() should contain %q, got %q", want, result)
		}
	}
}

func TestInfoCommitTruncation(t *testing.T) {
	originalCommit := Commit
	defer func() { Commit = originalCommit }()

	Commit = "abc123456789abcdef"
	result := Info()

	if !strings.Contains(result, "abc1234") {
		t.Errorf("Info() should contain truncated commit 'abc1234', got %q", result)
	}
	if strings.Contains(result, "abc123456789abcdef") {
		t.Errorf("Info() should NOT contain full commit, got %q", result)
	}
}

func TestFull(t *testing.T) {
	result := Full()

	for _, want := range []string{"Commit:", "Built:", "Templates:", TemplateVersion, runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(result, want) {
			t.Errorf("Full() should contain %q, got:\n%s", want, result)
		}
	}
}

func TestIsDev(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	tests := []struct {
		version string
		want    bool
	}{
		{"dev", true},
		{"", true},
		{"unknown", true},
		{"v1.2.3", false},
		{"0.9.0", false},
	}
	for _, tt := range tests {
		Version = tt.version
		if got := IsDev(); got != tt.want {
			t.Errorf("IsDev() with Version=%q = %v, want %v", tt.version, got, tt.want)
		}
	}
}
