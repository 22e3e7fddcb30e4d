package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         int      `yaml:"port"`
		AllowOrigins []string `yaml:"allowOrigins"`
	} `yaml:"server"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Gemini struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Openai struct {
		ApiKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	LLM struct {
		// Backend priority order for the fallback chain, e.g. ["gemini", "openai"].
		Providers []string `yaml:"providers"`
	} `yaml:"llm"`

	Simulation struct {
		// RandomSeed pins the policy RNG; 0 seeds from the clock.
		RandomSeed int64 `yaml:"randomSeed"`
	} `yaml:"simulation"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = []string{"gemini", "openai"}
	}

	return &cfg, nil
}
