package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("REGTEXT_TEST_KEY", "secret-value")
	tests := []struct {
		input string
		want  string
	}{
		{"${REGTEXT_TEST_KEY}", "secret-value"},
		{"prefix-${REGTEXT_TEST_KEY}-suffix", "prefix-secret-value-suffix"},
		{"${REGTEXT_UNSET_VAR}", ""},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.input); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToOCRConfigDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("REGTEXT_OCR_API_KEY", "")
	cfg := DefaultConfig()
	// Default api_key references an empty env var and model is empty.
	if got := cfg.ToOCRConfig(); got != nil {
		t.Errorf("expected nil OCR config, got %+v", got)
	}

	cfg.OCR.Model = "vision-model"
	if got := cfg.ToOCRConfig(); got != nil {
		t.Error("model alone must not enable OCR")
	}
}

func TestToOCRConfigEnabled(t *testing.T) {
	t.Setenv("REGTEXT_OCR_API_KEY", "k-123")
	cfg := DefaultConfig()
	cfg.OCR.Model = "vision-model"

	ocrCfg := cfg.ToOCRConfig()
	if ocrCfg == nil {
		t.Fatal("expected OCR config")
	}
	if ocrCfg.APIKey != "k-123" {
		t.Errorf("api key = %q", ocrCfg.APIKey)
	}
	if ocrCfg.Model != "vision-model" {
		t.Errorf("model = %q", ocrCfg.Model)
	}
	if ocrCfg.MaxWorkers != cfg.OCR.MaxWorkers {
		t.Errorf("workers = %d", ocrCfg.MaxWorkers)
	}
}

func TestReloadNotifiesSubscribers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	manager, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := manager.Get().Log.Level; got != "info" {
		t.Fatalf("initial level = %q", got)
	}

	var notified *Config
	manager.OnChange(func(cfg *Config) { notified = cfg })

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := manager.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if notified == nil || notified.Log.Level != "debug" {
		t.Errorf("subscriber saw %+v, want debug level", notified)
	}
	if got := manager.Get().Log.Level; got != "debug" {
		t.Errorf("Get().Log.Level = %q after reload", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "ocr:") || !strings.Contains(content, "extract:") {
		t.Errorf("sections missing: %s", content)
	}
	if !strings.Contains(content, "${REGTEXT_OCR_API_KEY}") {
		t.Errorf("env var reference missing: %s", content)
	}
}
