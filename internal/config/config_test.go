package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedVars = []string{
	"SQLASSIST_DATASET", "SQLASSIST_STORE_URI", "SQLASSIST_LOG_LEVEL", "SQLASSIST_LOG_MODE",
	"SQLASSIST_DEV", "SQLASSIST_MAX_ITERATIONS", "SQLASSIST_TOP_K", "SQLASSIST_DRY_RUN",
	"AGENT_PROVIDER", "AGENT_MODEL", "AGENT_API_KEY", "AGENT_BASE_URL", "AGENT_TEMPERATURE",
	"JUDGE_PROVIDER", "JUDGE_MODEL", "JUDGE_API_KEY", "JUDGE_BASE_URL", "JUDGE_TEMPERATURE",
	"OPENAI_API_KEY", "GOOGLE_API_KEY",
}

// clearEnv unsets every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range managedVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "freelancer_earnings_bd.csv", cfg.DatasetPath)
	assert.Equal(t, "simple", cfg.LogMode)
	assert.Equal(t, 15, cfg.MaxIterations)
	assert.Equal(t, 10, cfg.TopK)
	assert.False(t, cfg.DryRun)

	assert.Equal(t, "openai", cfg.Agent.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Agent.ModelName)
	assert.Equal(t, "sk-openai", cfg.Agent.Token)
	assert.Zero(t, cfg.Agent.Temperature)

	assert.Equal(t, "google", cfg.Judge.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Judge.ModelName)
	assert.Equal(t, "g-key", cfg.Judge.Token)
}

func TestLoadPrefixedOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENT_MODEL", "gpt-4o")
	t.Setenv("AGENT_API_KEY", "sk-agent")
	t.Setenv("AGENT_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("AGENT_TEMPERATURE", "0.3")
	t.Setenv("JUDGE_PROVIDER", "OpenAI")
	t.Setenv("JUDGE_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-shared")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Agent.ModelName)
	assert.Equal(t, "sk-agent", cfg.Agent.Token)
	assert.Equal(t, "http://localhost:8080/v1", cfg.Agent.BaseURL)
	assert.InDelta(t, 0.3, cfg.Agent.Temperature, 1e-9)

	assert.Equal(t, "openai", cfg.Judge.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Judge.ModelName)
	assert.Equal(t, "sk-shared", cfg.Judge.Token)
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "SQLASSIST_DATASET=from_file.csv\nSQLASSIST_TOP_K=5\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	t.Setenv("SQLASSIST_TOP_K", "20")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from_file.csv", cfg.DatasetPath)
	assert.Equal(t, 20, cfg.TopK)
}

func TestLoadMissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad log mode", "SQLASSIST_LOG_MODE", "verbose"},
		{"zero iterations", "SQLASSIST_MAX_ITERATIONS", "0"},
		{"negative top k", "SQLASSIST_TOP_K", "-1"},
		{"judge without model", "JUDGE_PROVIDER", "anthropic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
