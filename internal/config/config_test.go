package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want default", cfg.Generator.Model)
	}
	if cfg.Watch.DebounceMS != 500 {
		t.Errorf("DebounceMS = %d, want 500", cfg.Watch.DebounceMS)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
generator:
  model: gemini-2.5-pro
  timeout: 30s
store:
  database_path: /tmp/custom.db
validation:
  sentinel: "pending"
  synonyms:
    OKAY: ADEQUATE
logging:
  debug_mode: true
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", cfg.Generator.Model)
	}
	if got := cfg.GetGeneratorTimeout().Seconds(); got != 30 {
		t.Errorf("timeout = %vs, want 30s", got)
	}
	if cfg.Store.DatabasePath != "/tmp/custom.db" {
		t.Errorf("DatabasePath = %q", cfg.Store.DatabasePath)
	}
	if !cfg.Logging.DebugMode || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	tables := cfg.Tables()
	if tables.Sentinel != "pending" {
		t.Errorf("Sentinel = %q", tables.Sentinel)
	}
	if tables.Synonyms["OKAY"] != "ADEQUATE" {
		t.Error("custom synonym not merged")
	}
	if tables.Synonyms["GOOD"] != "ADEQUATE" {
		t.Error("built-in synonym lost during merge")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("generator: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SPARLO_API_KEY", "sparlo-key")
	t.Setenv("SPARLO_DB", "/tmp/env.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generator.APIKey != "sparlo-key" {
		t.Errorf("APIKey = %q", cfg.Generator.APIKey)
	}
	if cfg.Store.DatabasePath != "/tmp/env.db" {
		t.Errorf("DatabasePath = %q", cfg.Store.DatabasePath)
	}
}

func TestValidateGenerator(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SPARLO_API_KEY", "")
	cfg := DefaultConfig()
	if err := cfg.ValidateGenerator(); err == nil {
		t.Fatal("expected error without API key")
	}
	cfg.Generator.APIKey = "k"
	if err := cfg.ValidateGenerator(); err != nil {
		t.Fatalf("ValidateGenerator: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Generator.Model = "custom-model"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Generator.Model != "custom-model" {
		t.Errorf("Model = %q after round trip", loaded.Generator.Model)
	}
}
