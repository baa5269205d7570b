// Package config loads service configuration from YAML with environment
// overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all ethoscope configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Models   ModelsConfig   `yaml:"models"`
	Ontology OntologyConfig `yaml:"ontology"`
	Friction FrictionConfig `yaml:"friction"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	Mode          string `yaml:"mode"` // gin mode: debug, release, test
	PromptLogPath string `yaml:"prompt_log_path"`
}

// ModelsConfig lists the model identifiers offered per provider. Empty
// lists fall back to the built-in defaults.
type ModelsConfig struct {
	Gemini    []string `yaml:"gemini"`
	Anthropic []string `yaml:"anthropic"`
	OpenAI    []string `yaml:"openai"`
}

// OntologyConfig optionally points at an external ontology file. Empty
// means the embedded copy is used.
type OntologyConfig struct {
	Path string `yaml:"path"`
}

// FrictionConfig tunes the friction monitor.
type FrictionConfig struct {
	TrendWindow int `yaml:"trend_window"`
	MaxHistory  int `yaml:"max_history"` // 0 keeps history unbounded
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			Mode:          "release",
			PromptLogPath: "context/prompts.txt",
		},
		Friction: FrictionConfig{
			TrendWindow: 10,
			MaxHistory:  1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file, applying environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating the directory.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides. API keys stay
// out of the config file entirely; the llm package reads them per request.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("ETHOSCOPE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if mode := os.Getenv("ETHOSCOPE_GIN_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if path := os.Getenv("ETHOSCOPE_PROMPT_LOG"); path != "" {
		c.Server.PromptLogPath = path
	}
	if path := os.Getenv("ETHOSCOPE_ONTOLOGY"); path != "" {
		c.Ontology.Path = path
	}
	if level := os.Getenv("ETHOSCOPE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Friction.TrendWindow < 0 {
		return fmt.Errorf("friction.trend_window must not be negative")
	}
	if c.Friction.MaxHistory < 0 {
		return fmt.Errorf("friction.max_history must not be negative")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release, or test")
	}
	return nil
}
