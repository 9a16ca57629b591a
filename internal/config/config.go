package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"udaan-chat/internal/logging"
	"udaan-chat/internal/models"
)

const (
	DefaultConfigDir  = ".udaan-chat"
	DefaultConfigFile = "config.yaml"
)

// Environment overrides
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
	EnvModel   = "UDAAN_MODEL"
)

// Config represents the application configuration
type Config struct {
	Completion CompletionConfig `yaml:"completion"`
	UI         UIConfig         `yaml:"ui"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CompletionConfig points at an OpenAI-compatible chat completion endpoint
type CompletionConfig struct {
	BaseURL      string  `yaml:"base_url"`
	APIKey       string  `yaml:"api_key"`
	Model        string  `yaml:"model"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	SystemPrompt string  `yaml:"system_prompt"`
}

type UIConfig struct {
	Title string `yaml:"title"`

	// Locale is a BCP 47 tag controlling history dates, e.g. "en-US" or "de-DE"
	Locale string `yaml:"locale"`

	// SidebarRatio: share of the terminal width used by the history sidebar (0.0-0.5)
	SidebarRatio float64 `yaml:"sidebar_ratio"`

	// SidebarMinWidth: terminals narrower than this hide the sidebar
	SidebarMinWidth int `yaml:"sidebar_min_width"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File defaults to a dated file in the config directory
	File string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Completion: CompletionConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		UI: UIConfig{
			Title:           "UDAAN CHAT",
			Locale:          "en-US",
			SidebarRatio:    0.25,
			SidebarMinWidth: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Dir returns the configuration directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir), nil
}

// GetConfigPath returns the path to the default config file
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// Load loads the configuration from the default location
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path, creating it with defaults if it
// does not exist, then applies environment overrides.
func LoadFrom(path string) (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	var cfg *Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg = DefaultConfig()
		// The app works even if we can't write config
		_ = SaveTo(path, cfg)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		cfg = DefaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold an API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Completion.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Completion.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Completion.Model = v
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Completion.BaseURL == "" {
		return fmt.Errorf("completion.base_url must not be empty")
	}

	if c.Completion.Model == "" {
		return fmt.Errorf("completion.model must not be empty")
	}

	if c.Completion.Temperature < 0.0 || c.Completion.Temperature > 2.0 {
		return fmt.Errorf("completion.temperature must be between 0.0 and 2.0, got %f", c.Completion.Temperature)
	}

	if c.Completion.MaxTokens < 0 {
		return fmt.Errorf("completion.max_tokens must not be negative, got %d", c.Completion.MaxTokens)
	}

	if c.UI.SidebarRatio < 0.0 || c.UI.SidebarRatio > 0.5 {
		return fmt.Errorf("ui.sidebar_ratio must be between 0.0 and 0.5, got %f", c.UI.SidebarRatio)
	}

	if c.UI.SidebarMinWidth < 0 {
		return fmt.Errorf("ui.sidebar_min_width must not be negative, got %d", c.UI.SidebarMinWidth)
	}

	if _, err := models.ResolveDateFormat(c.UI.Locale); err != nil {
		return fmt.Errorf("ui.locale: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return nil
}

// DateFormat resolves the configured locale
func (c *Config) DateFormat() models.DateFormat {
	format, err := models.ResolveDateFormat(c.UI.Locale)
	if err != nil {
		return models.DefaultDateFormat()
	}
	return format
}

// LogPath returns the configured log file, or a dated file under dir
func (c *Config) LogPath(dir string) string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return logging.DefaultLogPath(filepath.Join(dir, "logs"))
}
