package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/fishbone/pkg/config"
)

func TestConfigInit(t *testing.T) {
	c, dir := newTestCLI(t)
	if err := execute(t, c, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}

	cfg, err := config.ReadFile(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("written config does not parse: %v", err)
	}
	if cfg.Server.Addr != config.DefaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, config.DefaultAddr)
	}

	if err := execute(t, New(io.Discard, LogInfo), "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if err := execute(t, New(io.Discard, LogInfo), "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestConfigInitUser(t *testing.T) {
	c, dir := newTestCLI(t)
	if err := execute(t, c, "config", "init", "--user"); err != nil {
		t.Fatalf("config init --user: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config", appName, "config.toml")); err != nil {
		t.Errorf("user config not written: %v", err)
	}
}

func TestConfigShowUsesExplicitFile(t *testing.T) {
	c, dir := newTestCLI(t)
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "--config", path, "config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if c.Config.Server.Addr != ":9090" || c.Config.Path != path {
		t.Errorf("loaded config = %+v", c.Config)
	}
}

func TestCacheClear(t *testing.T) {
	c, dir := newTestCLI(t)
	input := writeDiagram(t, dir)
	if err := execute(t, c, "render", input); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, New(io.Discard, LogInfo), "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "cache", appName))
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("cache entry %s survived clear", e.Name())
		}
	}
}

func TestCacheClearRejectsRemoteBackend(t *testing.T) {
	c, dir := newTestCLI(t)
	cfg := "[cache]\nbackend = \"redis\"\nredis_url = \"redis://localhost:6379\"\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "cache", "clear"); err == nil {
		t.Error("cache clear should refuse a redis backend")
	}
}
