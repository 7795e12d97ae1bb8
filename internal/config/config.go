package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the server looks for its YAML config when no
// -config flag is given.
const DefaultConfigPath = "config.yaml"

const (
	defaultPort          = 2334
	defaultHistoryWindow = 15
	defaultGradeLabel    = "Unknown"
)

// Load reads and normalizes the YAML config at path.
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	Normalize(&cfg)
	return &cfg, nil
}

// Normalize applies defaults and environment overrides in place.
func Normalize(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = "production"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.Tutor.HistoryWindow <= 0 {
		cfg.Tutor.HistoryWindow = defaultHistoryWindow
	}
	if strings.TrimSpace(cfg.Tutor.DefaultGrade) == "" {
		cfg.Tutor.DefaultGrade = defaultGradeLabel
	}

	// Deployment environments inject secrets without writing them into the
	// config file.
	if dsn := strings.TrimSpace(os.Getenv("GS_DSN")); dsn != "" {
		cfg.DSN = dsn
	}
	if url := strings.TrimSpace(os.Getenv("GS_REDIS_URL")); url != "" {
		cfg.RedisURL = url
	}
	if key := strings.TrimSpace(os.Getenv("GS_AI_API_KEY")); key != "" {
		for i := range cfg.AI.Providers {
			if strings.TrimSpace(cfg.AI.Providers[i].APIKey) == "" {
				cfg.AI.Providers[i].APIKey = key
			}
		}
	}
}

// IsDev reports whether the server runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}
