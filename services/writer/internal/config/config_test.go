package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GEMINI_GENERATION_MODEL", "gemini-2.5-flash")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("WRITER_SUPPORTED_LOCALES", "en-US, fr-FR,,de-DE")

	cfgPath := writeConfig(t, `
port: "8090"
logLevel: "debug"
geminiAPIKey: "file-key"
generationModel: "gemini-2.0-flash"
inFlightTTL: "90s"
`)
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("geminiAPIKey = %q, want env-key", cfg.GeminiAPIKey)
	}
	if cfg.GenerationModel != "gemini-2.5-flash" {
		t.Fatalf("generationModel = %q", cfg.GenerationModel)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("redisAddr = %q", cfg.RedisAddr)
	}
	if len(cfg.SupportedLocales) != 3 || cfg.SupportedLocales[1] != "fr-FR" {
		t.Fatalf("supportedLocales = %v", cfg.SupportedLocales)
	}
	if cfg.DefaultLocale != "en-US" {
		t.Fatalf("defaultLocale = %q, want en-US", cfg.DefaultLocale)
	}
	ttl, err := ParseDuration("inFlightTTL", cfg.InFlightTTL)
	if err != nil || ttl != 90*time.Second {
		t.Fatalf("inFlightTTL = %v (%v), want 90s", ttl, err)
	}
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfgPath := writeConfig(t, `port: "8090"`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error without gemini key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidateConfigRejectsBadDurations(t *testing.T) {
	cfg := FileConfig{Port: "8090", GeminiAPIKey: "k", FailureGateTTL: "soon"}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for invalid failureGateTTL")
	}
	cfg = FileConfig{Port: "8090", GeminiAPIKey: "k", InFlightTTL: "-1s"}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for negative inFlightTTL")
	}
}
