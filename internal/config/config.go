package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"sqlassist/internal/llm"
)

// Config holds process configuration read from the environment.
// A .env file, when present, is loaded first; variables already set win.
type Config struct {
	// DatasetPath is the CSV file loaded at startup
	DatasetPath string `env:"SQLASSIST_DATASET" env-default:"freelancer_earnings_bd.csv"`

	// StoreURI overrides the SQLite file derived from DatasetPath.
	// When set, the dataset is still loaded into the derived file; the agent queries this store.
	StoreURI string `env:"SQLASSIST_STORE_URI"`

	LogLevel      string `env:"SQLASSIST_LOG_LEVEL" env-default:"info"`
	LogMode       string `env:"SQLASSIST_LOG_MODE" env-default:"simple"` // simple, full
	Development   bool   `env:"SQLASSIST_DEV" env-default:"true"`
	MaxIterations int    `env:"SQLASSIST_MAX_ITERATIONS" env-default:"15"`
	TopK          int    `env:"SQLASSIST_TOP_K" env-default:"10"`
	DryRun        bool   `env:"SQLASSIST_DRY_RUN" env-default:"false"` // EXPLAIN before execute_sql

	Agent llm.ModelConfig `env-prefix:"AGENT_"`
	Judge llm.ModelConfig `env-prefix:"JUDGE_"`
}

const (
	defaultAgentProvider = llm.ProviderOpenAI
	defaultAgentModel    = "gpt-4o-mini"
	defaultJudgeProvider = llm.ProviderGoogle
	defaultJudgeModel    = "gemini-2.0-flash"
)

// Load reads envFile (if it exists) and then the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyModelDefaults(&cfg.Agent, defaultAgentProvider, defaultAgentModel)
	applyModelDefaults(&cfg.Judge, defaultJudgeProvider, defaultJudgeModel)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyModelDefaults fills provider, model and the provider's standard API key variable
func applyModelDefaults(m *llm.ModelConfig, provider, model string) {
	if m.Provider == "" {
		m.Provider = provider
	}
	m.Provider = strings.ToLower(m.Provider)
	if m.ModelName == "" && m.Provider == provider {
		m.ModelName = model
	}
	if m.Token == "" {
		switch m.Provider {
		case llm.ProviderOpenAI:
			m.Token = os.Getenv("OPENAI_API_KEY")
		case llm.ProviderGoogle:
			m.Token = os.Getenv("GOOGLE_API_KEY")
		}
	}
}

func (c *Config) validate() error {
	switch c.LogMode {
	case "simple", "full":
	default:
		return fmt.Errorf("log mode must be simple or full, got %q", c.LogMode)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top k must be positive, got %d", c.TopK)
	}
	for name, m := range map[string]llm.ModelConfig{"agent": c.Agent, "judge": c.Judge} {
		if m.ModelName == "" {
			return fmt.Errorf("%s model is required for provider %s", name, m.Provider)
		}
	}
	return nil
}
