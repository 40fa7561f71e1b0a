package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OCR_LANGS", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("got port %q, want 5000", cfg.Port)
	}
	if cfg.OpenAIModel != "gpt-3.5-turbo" {
		t.Errorf("got model %q", cfg.OpenAIModel)
	}
	if cfg.RequestTimeout != 70*time.Second {
		t.Errorf("got timeout %v", cfg.RequestTimeout)
	}
	if len(cfg.OCRLangs) != 2 || cfg.OCRLangs[0] != "en" || cfg.OCRLangs[1] != "hi" {
		t.Errorf("got langs %v", cfg.OCRLangs)
	}
	if cfg.HasLLM() {
		t.Error("HasLLM with no keys")
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Error("RequireTelegram without a token")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OCR_LANGS", "en, ta")
	t.Setenv("FALLBACK_DELAY", "250ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("got port %q", cfg.Port)
	}
	if cfg.LLMProvider != "gemini" || !cfg.HasLLM() {
		t.Errorf("got provider %q, HasLLM=%v", cfg.LLMProvider, cfg.HasLLM())
	}
	if len(cfg.OCRLangs) != 2 || cfg.OCRLangs[1] != "ta" {
		t.Errorf("got langs %v", cfg.OCRLangs)
	}
	if cfg.FallbackDelay != 250*time.Millisecond {
		t.Errorf("got delay %v", cfg.FallbackDelay)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_MODEL", "")

	path := filepath.Join(t.TempDir(), "tutor.yaml")
	data := "port: \"9000\"\nopenai_model: gpt-4o-mini\nocr_langs: [en]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("got port %q model %q", cfg.Port, cfg.OpenAIModel)
	}
	if len(cfg.OCRLangs) != 1 || cfg.OCRLangs[0] != "en" {
		t.Errorf("got langs %v", cfg.OCRLangs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
