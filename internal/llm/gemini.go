package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// Gemini is an llms.Model backed by the Google Gen AI SDK
type Gemini struct {
	models modelsAPI
	model  string
}

// modelsAPI is the part of genai.Models used here
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGemini creates a Gemini model client
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("google: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("google: failed to create client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// GenerateContent implements llms.Model
func (g *Gemini) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	model := g.model
	if opts.Model != "" {
		model = opts.Model
	}

	contents, system := convertMessages(messages)
	resp, err := g.models.GenerateContent(ctx, model, contents, buildConfig(opts, system))
	if err != nil {
		return nil, fmt.Errorf("google: generate content: %w", err)
	}

	choice := &llms.ContentChoice{Content: resp.Text()}
	if len(resp.Candidates) > 0 {
		choice.StopReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		choice.GenerationInfo = map[string]any{
			"PromptTokens":     int(resp.UsageMetadata.PromptTokenCount),
			"CompletionTokens": int(resp.UsageMetadata.CandidatesTokenCount),
			"TotalTokens":      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

// Call implements llms.Model
func (g *Gemini) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g, prompt, options...)
}

// convertMessages maps langchaingo messages to Gemini contents.
// System messages are joined into the system instruction.
func convertMessages(messages []llms.MessageContent) ([]*genai.Content, string) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, msg := range messages {
		text := messageText(msg)
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			system = append(system, text)
			continue
		case llms.ChatMessageTypeAI:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func messageText(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

func buildConfig(opts llms.CallOptions, system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	temperature := float32(opts.Temperature)
	config.Temperature = &temperature
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(min(opts.MaxTokens, math.MaxInt32))
	}
	if len(opts.StopWords) > 0 {
		config.StopSequences = opts.StopWords
	}
	return config
}
