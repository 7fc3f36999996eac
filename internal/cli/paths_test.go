package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestLocalCacheDirFromConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Dir = "/srv/fishbone-cache"

	dir, err := c.localCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/fishbone-cache" {
		t.Errorf("localCacheDir() = %q, want config dir", dir)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input string
		want          string
	}{
		{"", "incident.yaml", "incident"},
		{"", "dir/incident.json", "dir/incident"},
		{"", "-", "fishbone"},
		{"out.svg", "incident.yaml", "out"},
		{"out/report.png", "incident.yaml", "out/report"},
		{"out/report", "incident.yaml", "out/report"},
		{"report.v2", "incident.yaml", "report.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestTrimLayoutExt(t *testing.T) {
	tests := map[string]string{
		"incident.layout.json": "incident.json",
		"a/b.layout.json":      "a/b.json",
		"layout.json":          "layout.json",
		".layout.json":         ".layout.json",
		"incident.json":        "incident.json",
	}
	for in, want := range tests {
		if got := trimLayoutExt(in); got != want {
			t.Errorf("trimLayoutExt(%q) = %q, want %q", in, got, want)
		}
	}
}
