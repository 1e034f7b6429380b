// Package config loads skilleval.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "skilleval.yaml"

const (
	AgentClaudeCode = "claude-code"
	AgentDocker     = "docker"

	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var validate = validator.New()

type Config struct {
	Paths   Paths   `yaml:"paths"`
	Agent   Agent   `yaml:"agent"`
	Judge   Judge   `yaml:"judge"`
	Secrets Secrets `yaml:"secrets"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
}

type Paths struct {
	Scaffolds string `yaml:"scaffolds" validate:"required"`
	Reports   string `yaml:"reports" validate:"required"`
	Debug     string `yaml:"debug" validate:"required"`
	Skills    string `yaml:"skills"`
	// Rubric is a rubric YAML file; empty means the built-in rubric.
	Rubric string `yaml:"rubric"`
}

type Agent struct {
	Type           string            `yaml:"type" validate:"oneof=claude-code docker"`
	Binary         string            `yaml:"binary" validate:"required_if=Type claude-code"`
	Args           []string          `yaml:"args"`
	Image          string            `yaml:"image" validate:"required_if=Type docker"`
	Command        []string          `yaml:"command"`
	Env            map[string]string `yaml:"env"`
	TimeoutSeconds int               `yaml:"timeout_seconds" validate:"gt=0"`
	CPULimit       float64           `yaml:"cpu_limit" validate:"gte=0"`
	MemoryLimit    int64             `yaml:"memory_limit" validate:"gte=0"`
}

func (a Agent) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type Judge struct {
	Provider       string `yaml:"provider" validate:"oneof=anthropic openai"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv      string `yaml:"api_key_env" validate:"required"`
	MaxTokens      int    `yaml:"max_tokens" validate:"gt=0"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gt=0"`
}

func (j Judge) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// APIKey reads the key from the configured environment variable.
func (j Judge) APIKey() string {
	return os.Getenv(j.APIKeyEnv)
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type Metrics struct {
	// Textfile receives a Prometheus text exposition after each run.
	Textfile string `yaml:"textfile"`
}

func Default() *Config {
	return &Config{
		Paths: Paths{
			Scaffolds: "scaffolds",
			Reports:   "reports",
			Debug:     "debug-runs",
			Skills:    "skills",
		},
		Agent: Agent{
			Type:           AgentClaudeCode,
			Binary:         "claude",
			Args:           []string{"--print", "--dangerously-skip-permissions"},
			TimeoutSeconds: 300,
		},
		Judge: Judge{
			Provider:       ProviderAnthropic,
			Model:          "claude-sonnet-4-20250514",
			APIKeyEnv:      "ANTHROPIC_API_KEY",
			MaxTokens:      2000,
			TimeoutSeconds: 60,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when path does
// not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}
