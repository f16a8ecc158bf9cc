package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config location, overridable with RELAY_CONFIG.
var ConfigPath = envOr("RELAY_CONFIG", "config.yaml")

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port             string `yaml:"port"`
	LogLevel         string `yaml:"logLevel"`
	AnthropicAPIKey  string `yaml:"anthropicAPIKey"`
	AnthropicBaseURL string `yaml:"anthropicBaseURL"`
}

// Load reads config from path (defaults to config.yaml). A missing file is not
// an error; the relay runs on defaults and environment alone.
// The Anthropic key may be empty here; the upstream rejects the call instead.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := os.Getenv("RELAY_PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("RELAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("ANTHROPIC_BASE_URL"); v != "" {
		cfg.AnthropicBaseURL = strings.TrimSpace(v)
	}
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if strings.ContainsAny(cfg.Port, ": ") {
		return fmt.Errorf("config: port %q must be a bare port number", cfg.Port)
	}
	if cfg.AnthropicBaseURL != "" && !strings.HasPrefix(cfg.AnthropicBaseURL, "http://") && !strings.HasPrefix(cfg.AnthropicBaseURL, "https://") {
		return fmt.Errorf("config: anthropicBaseURL %q must be an http(s) URL", cfg.AnthropicBaseURL)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
