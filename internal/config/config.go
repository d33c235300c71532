// Package config provides configuration management for mnemo.
// Values are resolved in three layers: built-in defaults, then an optional
// YAML config file (path in MNEMO_CONFIG), then environment variables with
// the MNEMO_ prefix. Later layers win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the mnemo application.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
}

// StorageConfig contains storage engine configuration.
type StorageConfig struct {
	Engine      string `yaml:"engine"`       // Storage engine: sqlite, postgres (default: sqlite)
	DataPath    string `yaml:"data_path"`    // Path to data directory for sqlite (default: ./data)
	PostgresDSN string `yaml:"postgres_dsn"` // Connection string for the postgres engine
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider        string        `yaml:"provider"`          // LLM provider: openai, ollama, anthropic (default: openai)
	OpenAIAPIKey    string        `yaml:"openai_api_key"`    // OpenAI API key
	OpenAIModel     string        `yaml:"openai_model"`      // OpenAI model name (default: gpt-4o-mini)
	OpenAIBaseURL   string        `yaml:"openai_base_url"`   // OpenAI API base URL (default: https://api.openai.com)
	OllamaURL       string        `yaml:"ollama_url"`        // Ollama API URL (default: http://localhost:11434)
	OllamaModel     string        `yaml:"ollama_model"`      // Ollama model name (default: qwen2.5:7b)
	AnthropicAPIKey string        `yaml:"anthropic_api_key"` // Anthropic API key
	AnthropicModel  string        `yaml:"anthropic_model"`   // Anthropic model name
	Timeout         time.Duration `yaml:"timeout"`           // Request timeout (default: 60s)

	// Temperatures are fixed per request type: classification and extraction
	// are deterministic, recall allows slight variation.
	ExtractionTemperature float64 `yaml:"extraction_temperature"` // default: 0.0
	RecallTemperature     float64 `yaml:"recall_temperature"`     // default: 0.3
}

// LoadConfig resolves configuration from defaults, the optional YAML file, and
// environment variables, in that order of precedence (env wins).
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("MNEMO_CONFIG"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Engine:   "sqlite",
			DataPath: "./data",
		},
		LLM: LLMConfig{
			Provider:              "openai",
			OpenAIModel:           "gpt-4o-mini",
			OpenAIBaseURL:         "https://api.openai.com",
			OllamaURL:             "http://localhost:11434",
			OllamaModel:           "qwen2.5:7b",
			AnthropicModel:        "claude-haiku-4-5-20251001",
			Timeout:               60 * time.Second,
			ExtractionTemperature: 0.0,
			RecallTemperature:     0.3,
		},
	}
}

// applyFile overlays values from a YAML config file onto cfg.
// A missing file is an error: MNEMO_CONFIG was set explicitly.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays MNEMO_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	cfg.Storage.Engine = getEnv("MNEMO_STORAGE_ENGINE", cfg.Storage.Engine)
	cfg.Storage.DataPath = getEnv("MNEMO_DATA_PATH", cfg.Storage.DataPath)
	cfg.Storage.PostgresDSN = getEnv("MNEMO_POSTGRES_DSN", cfg.Storage.PostgresDSN)

	cfg.LLM.Provider = getEnv("MNEMO_LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.OpenAIAPIKey = getEnv("MNEMO_OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.OpenAIModel = getEnv("MNEMO_OPENAI_MODEL", cfg.LLM.OpenAIModel)
	cfg.LLM.OpenAIBaseURL = getEnv("MNEMO_OPENAI_BASE_URL", cfg.LLM.OpenAIBaseURL)
	cfg.LLM.OllamaURL = getEnv("MNEMO_OLLAMA_URL", cfg.LLM.OllamaURL)
	cfg.LLM.OllamaModel = getEnv("MNEMO_OLLAMA_MODEL", cfg.LLM.OllamaModel)
	cfg.LLM.AnthropicAPIKey = getEnv("MNEMO_ANTHROPIC_API_KEY", cfg.LLM.AnthropicAPIKey)
	cfg.LLM.AnthropicModel = getEnv("MNEMO_ANTHROPIC_MODEL", cfg.LLM.AnthropicModel)
	cfg.LLM.Timeout = getEnvDuration("MNEMO_LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.ExtractionTemperature = getEnvFloat("MNEMO_EXTRACTION_TEMPERATURE", cfg.LLM.ExtractionTemperature)
	cfg.LLM.RecallTemperature = getEnvFloat("MNEMO_RECALL_TEMPERATURE", cfg.LLM.RecallTemperature)
}

// getEnv retrieves a string environment variable or returns the current value.
func getEnv(key, current string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return current
}

// getEnvFloat retrieves a float environment variable or returns the current value.
// If the environment variable exists but cannot be parsed, it returns the
// current value.
func getEnvFloat(key string, current float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return current
}

// getEnvDuration retrieves a duration environment variable (e.g. "60s") or
// returns the current value.
func getEnvDuration(key string, current time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return current
}
