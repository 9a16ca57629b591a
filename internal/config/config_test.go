package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
completion:
  base_url: http://127.0.0.1:18181/v1
  model: llama3
  temperature: 0.2
  max_tokens: 512
  system_prompt: Be brief.
ui:
  title: TEST CHAT
  locale: de-DE
  sidebar_ratio: 0.3
  sidebar_min_width: 80
logging:
  level: debug
`

func clearEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvModel, "")
}

func TestLoadFrom_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:18181/v1", cfg.Completion.BaseURL)
	assert.Equal(t, "llama3", cfg.Completion.Model)
	assert.InDelta(t, 0.2, cfg.Completion.Temperature, 1e-9)
	assert.Equal(t, 512, cfg.Completion.MaxTokens)
	assert.Equal(t, "Be brief.", cfg.Completion.SystemPrompt)
	assert.Equal(t, "TEST CHAT", cfg.UI.Title)
	assert.Equal(t, "2.1.2006", cfg.DateFormat().DateLayout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFrom_CreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written")
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion:\n  model: mistral\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.Completion.Model)
	assert.Equal(t, DefaultConfig().UI, cfg.UI)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvBaseURL, "http://localhost:9999/v1")
	t.Setenv(EnvModel, "qwen")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Completion.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cfg.Completion.BaseURL)
	assert.Equal(t, "qwen", cfg.Completion.Model)
}

func TestLoadFrom_Malformed(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion: [oops"), 0600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.Completion.Model = "" },
			wantErr: "completion.model",
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.Completion.BaseURL = "" },
			wantErr: "completion.base_url",
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Completion.Temperature = 2.5 },
			wantErr: "completion.temperature",
		},
		{
			name:    "negative max tokens",
			mutate:  func(c *Config) { c.Completion.MaxTokens = -1 },
			wantErr: "completion.max_tokens",
		},
		{
			name:    "sidebar too wide",
			mutate:  func(c *Config) { c.UI.SidebarRatio = 0.75 },
			wantErr: "ui.sidebar_ratio",
		},
		{
			name:    "bad locale",
			mutate:  func(c *Config) { c.UI.Locale = "not a locale!" },
			wantErr: "ui.locale",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/x", "logs"), filepath.Dir(cfg.LogPath("/x")))

	cfg.Logging.File = "/var/log/chat.log"
	assert.Equal(t, "/var/log/chat.log", cfg.LogPath("/x"))
}
