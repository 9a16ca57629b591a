package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"udaan-chat/internal/config"
)

func clearEnv(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvModel, "")
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, got, err := loadConfig(&options{
		configPath: path,
		model:      "flag-model",
		baseURL:    "http://flag.example/v1",
		debug:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, path, got)
	assert.Equal(t, "flag-model", cfg.Completion.Model)
	assert.Equal(t, "http://flag.example/v1", cfg.Completion.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestConfigCmd_PrintsPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--config", path})

	require.NoError(t, root.Execute())
	assert.Equal(t, path, strings.TrimSpace(out.String()))
}

func TestModelsCmd_ListsModels(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[{"id":"b-model"},{"id":"a-model"}]}`)
	}))
	defer srv.Close()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{
		"models",
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--base-url", srv.URL + "/v1",
	})

	require.NoError(t, root.Execute())
	assert.Equal(t, "a-model\nb-model\n", out.String())
}
