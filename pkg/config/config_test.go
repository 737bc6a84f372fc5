package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	svDir := filepath.Join(dir, ".sv")
	if err := os.MkdirAll(svDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(svDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
env: TEST
system_id: 42
email: ops@example.com
snapshot: ./dump
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "TEST" || cfg.SystemID != 42 || cfg.Email != "ops@example.com" || cfg.Snapshot != "./dump" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "env: STAGING\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestLoadDefaultsEnv(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "system_id: 7\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "PROD" {
		t.Errorf("empty env should default to PROD, got %q", cfg.Env)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SV_ENV", "test")
	t.Setenv("SV_TOKEN", "tok-env")
	t.Setenv("SV_SYSTEM_ID", "9")

	path := writeConfig(t, t.TempDir(), "env: PROD\ntoken: tok-file\nsystem_id: 100\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "TEST" || cfg.Token != "tok-env" || cfg.SystemID != 9 {
		t.Errorf("environment should override the file, got %+v", cfg)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "env: TEST\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if path != filepath.Join(root, ".sv", "config.yaml") {
		t.Errorf("unexpected path %s", path)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Env != "PROD" {
		t.Errorf("expected default PROD env, got %q", cfg.Env)
	}
}
