package llm

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider names accepted in ModelConfig.Provider
const (
	ProviderOpenAI = "openai"
	ProviderGoogle = "google"
)

// ModelConfig LLM model config
// Field env names are relative; the config package adds AGENT_ / JUDGE_ prefixes.
type ModelConfig struct {
	Provider    string  `env:"PROVIDER"`
	ModelName   string  `env:"MODEL"`
	Token       string  `env:"API_KEY"`
	BaseURL     string  `env:"BASE_URL"`
	Temperature float64 `env:"TEMPERATURE" env-default:"0"`
}

// DisplayName gets model display name
func (c ModelConfig) DisplayName() string {
	return c.Provider + "/" + c.ModelName
}

// CreateLLM creates LLM instance for the configured provider.
// The returned model applies Temperature to every call unless the caller overrides it.
func CreateLLM(config ModelConfig) (llms.Model, error) {
	var (
		model llms.Model
		err   error
	)
	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI, "":
		opts := []openai.Option{
			openai.WithModel(config.ModelName),
			openai.WithToken(config.Token),
		}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderGoogle:
		model, err = NewGemini(context.Background(), config.ModelName, config.Token)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", config.DisplayName(), err)
	}
	return WithDefaults(model, llms.WithTemperature(config.Temperature)), nil
}

// defaultsModel prepends default call options
type defaultsModel struct {
	llms.Model
	defaults []llms.CallOption
}

// WithDefaults wraps model so defaults are applied before per-call options.
func WithDefaults(model llms.Model, defaults ...llms.CallOption) llms.Model {
	return &defaultsModel{Model: model, defaults: defaults}
}

func (m *defaultsModel) options(opts []llms.CallOption) []llms.CallOption {
	return append(slices.Clone(m.defaults), opts...)
}

func (m *defaultsModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	return m.Model.GenerateContent(ctx, messages, m.options(opts)...)
}

func (m *defaultsModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}
