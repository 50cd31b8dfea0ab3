package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys to env names: ai.endpoint -> TRIAGE_AI_ENDPOINT.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds all triage pipeline configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	AI      AIConfig      `mapstructure:"ai"`
	History HistoryConfig `mapstructure:"history"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Workers int           `mapstructure:"workers"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// AIConfig holds the AI collaborator connection settings. An empty
// endpoint or key leaves the scorer in heuristic-only mode.
type AIConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	Deployment string        `mapstructure:"deployment"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the AI collaborator is configured.
func (c AIConfig) Enabled() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// HistoryConfig holds similarity-matching settings.
type HistoryConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Limit     int     `mapstructure:"limit"`
}

// CacheConfig holds the AI response cache settings.
type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// Load reads configuration from an optional YAML file plus TRIAGE_*
// environment overrides, with defaults for everything else.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("ai.deployment", "gpt-4o")
	v.SetDefault("ai.api_version", "2024-12-01-preview")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("history.threshold", 0.3)
	v.SetDefault("history.limit", 10)
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("workers", 4)

	v.SetEnvPrefix("TRIAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envKeyReplacer)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
