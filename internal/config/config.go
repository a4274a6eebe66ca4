package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsPath is the optional local settings file consulted
// before every evaluation. Environment variables take precedence over it.
const DefaultSettingsPath = "ukreval.yaml"

const (
	DefaultNumConcurrent = 8
	DefaultMaxRetries    = 3
	DefaultOutputPath    = "./eval-results"
	DefaultTasks         = "ukrainian_bench"
	DefaultTasksPath     = "./tasks"
)

// env mirrors the process environment. Defaults are applied in Load so
// that a settings file can sit between the environment and the defaults.
type env struct {
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	OpenAIAPIBase   string `env:"OPENAI_API_BASE"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GroqAPIKey      string `env:"GROQ_API_KEY"`
	HFToken         string `env:"HF_TOKEN"`
	NumConcurrent   int    `env:"NUM_CONCURRENT"`
	MaxRetries      int    `env:"MAX_RETRIES"`
	OutputPath      string `env:"OUTPUT_PATH"`
	Tasks           string `env:"TASKS"`
	TasksPath       string `env:"TASKS_PATH"`
}

// Settings is the optional local settings file (ukreval.yaml).
type Settings struct {
	Provider      string `yaml:"provider,omitempty"`
	Model         string `yaml:"model,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
	NumConcurrent int    `yaml:"num_concurrent,omitempty"`
	MaxRetries    int    `yaml:"max_retries,omitempty"`
	OutputPath    string `yaml:"output_path,omitempty"`
	Tasks         string `yaml:"tasks,omitempty"`
	TasksPath     string `yaml:"tasks_path,omitempty"`
}

// Config is the resolved configuration: environment over settings file
// over built-in defaults.
type Config struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	GroqAPIKey      string
	HFToken         string

	NumConcurrent int
	MaxRetries    int
	OutputPath    string
	Tasks         string
	TasksPath     string

	// Provider, Model and BaseURL come from the settings file only;
	// positional CLI arguments override them.
	Provider string
	Model    string
	BaseURL  string
}

// Load resolves configuration from the environment and the optional
// settings file at path (DefaultSettingsPath when empty). A missing
// settings file is not an error; an unreadable or malformed one is.
func Load(ctx context.Context, path string) (*Config, error) {
	if ctx == nil {
		return nil, errors.New("config: nil context")
	}

	var e env
	if err := envconfig.Process(ctx, &e); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}

	s, err := loadSettings(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenAIAPIKey:    strings.TrimSpace(e.OpenAIAPIKey),
		AnthropicAPIKey: strings.TrimSpace(e.AnthropicAPIKey),
		GroqAPIKey:      strings.TrimSpace(e.GroqAPIKey),
		HFToken:         strings.TrimSpace(e.HFToken),
		Provider:        strings.TrimSpace(s.Provider),
		Model:           strings.TrimSpace(s.Model),
		BaseURL:         strings.TrimSpace(s.BaseURL),
	}

	cfg.OpenAIBaseURL = firstNonEmpty(e.OpenAIBaseURL, e.OpenAIAPIBase)
	cfg.NumConcurrent = firstPositive(e.NumConcurrent, s.NumConcurrent, DefaultNumConcurrent)
	cfg.MaxRetries = resolveMaxRetries(e.MaxRetries, s.MaxRetries)
	cfg.OutputPath = firstNonEmpty(e.OutputPath, s.OutputPath, DefaultOutputPath)
	cfg.Tasks = firstNonEmpty(e.Tasks, s.Tasks, DefaultTasks)
	cfg.TasksPath = firstNonEmpty(e.TasksPath, s.TasksPath, DefaultTasksPath)

	return cfg, nil
}

func loadSettings(path string) (*Settings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultSettingsPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("config: read settings %q: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("config: parse settings %q: %w", path, err)
	}
	return &s, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// resolveMaxRetries keeps MAX_RETRIES=0 meaningful: an explicit zero in
// the environment disables retries rather than falling through to the
// default.
func resolveMaxRetries(envVal, settingsVal int) int {
	if _, ok := os.LookupEnv("MAX_RETRIES"); ok && envVal >= 0 {
		return envVal
	}
	if settingsVal > 0 {
		return settingsVal
	}
	return DefaultMaxRetries
}
