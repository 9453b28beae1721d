// Package config loads application configuration from a YAML file and the
// environment. Environment variables take precedence over the file, which
// takes precedence over defaults.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application settings.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Model   ModelConfig   `yaml:"model"`
	Weather WeatherConfig `yaml:"weather"`
	Search  SearchConfig  `yaml:"search"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ModelConfig selects the model provider used by the agent lessons.
type ModelConfig struct {
	Provider  string `yaml:"provider" env:"MODEL_PROVIDER" env-default:"openai"`
	OpenAI    string `yaml:"openai" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	Anthropic string `yaml:"anthropic" env:"ANTHROPIC_MODEL" env-default:"claude-3-5-sonnet-20241022"`
}

// WeatherConfig holds the OpenWeatherMap credentials.
type WeatherConfig struct {
	APIKey string `yaml:"api_key" env:"OPENWEATHER_API_KEY"`
}

// SearchConfig holds the Tavily credentials.
type SearchConfig struct {
	APIKey string `yaml:"api_key" env:"TAVILY_API_KEY"`
}

// Load reads config.yaml if present and overlays environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig("config.yaml", &cfg); err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
	}

	return &cfg, nil
}
