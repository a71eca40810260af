package updater

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func releaseServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/repos/modu-ai/moai-adk/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		current, latest string
		want            bool
		wantErr         bool
	}{
		{"v1.2.0", "v1.3.0", true, false},
		{"1.3.0", "v1.3.0", false, false},
		{"v1.3.0-rc.1", "v1.3.0", true, false},
		{"v2.0.0", "v1.9.9", false, false},
		{"dev", "v1.0.0", false, true},
		{"v1.0.0", "latest", false, true},
	}
	for _, tt := range tests {
		got, err := IsNewer(tt.current, tt.latest)
		if (err != nil) != tt.wantErr {
			t.Errorf("IsNewer(%q, %q) error = %v", tt.current, tt.latest, err)
			continue
		}
		if got != tt.want {
			t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
		}
	}
}

func TestCheck_UpdateAvailable(t *testing.T) {
	srv, _ := releaseServer(t, http.StatusOK, `{"tag_name":"v1.4.0","html_url":"https://example.test/r/v1.4.0"}`)
	c := NewChecker(NewClient("modu-ai/moai-adk", time.Second).SetBaseURL(srv.URL), "")

	res := c.Check(context.Background(), "v1.3.2")
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if !res.UpdateAvailable || res.Latest != "v1.4.0" || res.ReleaseURL == "" {
		t.Errorf("res = %+v", res)
	}
}

func TestCheck_FailuresNeverCrash(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		current string
	}{
		{"not found", http.StatusNotFound, `{"message":"Not Found"}`, "v1.0.0"},
		{"missing tag", http.StatusOK, `{}`, "v1.0.0"},
		{"dev build", http.StatusOK, `{"tag_name":"v1.0.0"}`, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := releaseServer(t, tt.status, tt.body)
			c := NewChecker(NewClient("modu-ai/moai-adk", time.Second).SetBaseURL(srv.URL), "")
			res := c.Check(context.Background(), tt.current)
			if res.UpdateAvailable {
				t.Error("UpdateAvailable should be false on failure")
			}
			if res.Error == "" {
				t.Error("expected error to be recorded")
			}
		})
	}
}

func TestCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewChecker(NewClient("modu-ai/moai-adk", 200*time.Millisecond).SetBaseURL(url), "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := c.Check(ctx, "v1.0.0")
	if res.UpdateAvailable || res.Error == "" {
		t.Errorf("res = %+v", res)
	}
}

func TestCached(t *testing.T) {
	srv, hits := releaseServer(t, http.StatusOK, `{"tag_name":"v1.1.0"}`)
	path := filepath.Join(t.TempDir(), CacheFile)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c := NewChecker(NewClient("modu-ai/moai-adk", time.Second).SetBaseURL(srv.URL), path)
	c.now = func() time.Time { return now }

	if c.Last("v1.0.0") != nil {
		t.Fatal("Last() before any check should be nil")
	}
	first := c.Cached(context.Background(), "v1.0.0")
	second := c.Cached(context.Background(), "v1.0.0")
	if !first.UpdateAvailable || !second.UpdateAvailable {
		t.Fatalf("results = %+v, %+v", first, second)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1 (second call cached)", hits.Load())
	}
	if last := c.Last("v1.0.0"); last == nil || last.Latest != "v1.1.0" {
		t.Errorf("Last() = %+v", last)
	}

	// A different running version ignores the cache.
	c.Cached(context.Background(), "v1.1.0")
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}

	now = now.Add(CacheTTL + time.Minute)
	c.Cached(context.Background(), "v1.1.0")
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3 after expiry", hits.Load())
	}
}

func TestCachePath(t *testing.T) {
	if got := CachePath("/work"); got != filepath.Join("/work", ".moai", "cache", CacheFile) {
		t.Errorf("CachePath() = %q", got)
	}
}
