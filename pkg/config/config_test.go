package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("ORGBLOG_TEST_NAME", "from-env")
	path := writeConfig(t, "name: ${ORGBLOG_TEST_NAME}\n")

	cfg := &sample{Port: 8080}
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("name = %q, want from-env", cfg.Name)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Port)
	}
}

func TestLoad_Validation(t *testing.T) {
	path := writeConfig(t, "port: 0\n")

	err := Load(path, &sample{Port: 1})
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &sample{Port: 1}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOrDefault_Missing(t *testing.T) {
	cfg := &sample{Name: "default", Port: 1}
	if err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"), cfg); err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Name != "default" {
		t.Errorf("name = %q, want default", cfg.Name)
	}

	if err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"), &sample{}); err == nil {
		t.Error("defaults are validated too")
	}
}

func TestLoad_EnvFallback(t *testing.T) {
	t.Setenv("ORGBLOG_TEST_SET", "set")
	path := writeConfig(t, "name: ${ORGBLOG_TEST_UNSET:-fallback}-${ORGBLOG_TEST_SET:-unused}\n")

	cfg := &sample{Port: 1}
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "fallback-set" {
		t.Errorf("name = %q, want fallback-set", cfg.Name)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, "name: x\nprot: 9\n")

	if err := Load(path, &sample{Port: 1}); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg := &sample{Name: "kept", Port: 1}
	if err := Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "kept" {
		t.Errorf("name = %q", cfg.Name)
	}
}
