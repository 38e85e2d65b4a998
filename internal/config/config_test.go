package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GITHUB_TOKEN", "GITHUB_BASE_URL", "GITHUB_TIMEOUT",
		"OPENAI_API_KEY", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_TIMEOUT",
		"LISTEN_ADDR", "GIN_MODE",
	} {
		t.Setenv(k, "")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("READMEDRAFTER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	chdir(t, t.TempDir())

	cfg := Load()

	assert.Equal(t, "https://api.openai.com/v1", cfg.LLMBaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 15*time.Second, cfg.GitHubTimeout)
	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, DefaultTechnologies(), cfg.Technologies)
	assert.Empty(t, cfg.GitHubToken)
	assert.Empty(t, cfg.LLMAPIKey)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
github_token: file-token
llm_model: file-model
llm_timeout: 5s
server:
  addr: ":9000"
  seed_credentials: true
technologies:
  .go: go
  .rs: rust
`), 0o600))
	t.Setenv("READMEDRAFTER_CONFIG", path)
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("LLM_BASE_URL", "http://localhost:11434/v1/")

	cfg := Load()

	assert.Equal(t, "file-token", cfg.GitHubToken)
	assert.Equal(t, "env-model", cfg.LLMModel)
	assert.Equal(t, "sk-env", cfg.LLMAPIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMBaseURL)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.SeedCredentials)
	assert.Equal(t, map[string]string{".go": "go", ".rs": "rust"}, cfg.Technologies)
}

func TestLoadIgnoresBadDuration(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("READMEDRAFTER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("GITHUB_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 15*time.Second, cfg.GitHubTimeout)
}
