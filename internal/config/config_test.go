package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/llm"
	"github.com/mindweave/mindweave/pkg/theme"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())
	t.Setenv("GROQ_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.BaseURL != llm.DefaultBaseURL || cfg.LLM.Model != llm.DefaultModel {
		t.Errorf("LLM defaults = %+v", cfg.LLM)
	}
	if cfg.ThemeMode() != theme.Dark {
		t.Errorf("default theme = %v, want dark", cfg.ThemeMode())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())

	cfg := Default()
	cfg.LLM.APIKey = "gk_test"
	cfg.UI.Theme = string(theme.Light)
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LLM.APIKey != "gk_test" {
		t.Errorf("api key = %q", got.LLM.APIKey)
	}
	if got.ThemeMode() != theme.Light {
		t.Errorf("theme = %v, want light", got.ThemeMode())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())

	cfg := Default()
	cfg.LLM.Model = "from-file"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MINDWEAVE_LLM_MODEL", "from-env")
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.LLM.Model != "from-env" {
		t.Errorf("model = %q, want env override", got.LLM.Model)
	}
}

func TestGroqKeyFallback(t *testing.T) {
	t.Setenv("MINDWEAVE_CONFIG_DIR", t.TempDir())
	t.Setenv("GROQ_API_KEY", "gk_fallback")

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.LLM.APIKey != "gk_fallback" {
		t.Errorf("api key = %q, want fallback", got.LLM.APIKey)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINDWEAVE_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[llm\nbroken"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}
