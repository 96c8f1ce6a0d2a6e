package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

type recordingModel struct {
	opts llms.CallOptions
}

func (m *recordingModel) GenerateContent(_ context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.opts = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.opts)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestWithDefaultsAppliesTemperature(t *testing.T) {
	inner := &recordingModel{}
	model := WithDefaults(inner, llms.WithTemperature(0), llms.WithMaxTokens(64))

	out, err := model.Call(context.Background(), "hi", llms.WithTemperature(0.7))
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.InDelta(t, 0.7, inner.opts.Temperature, 1e-9, "per-call option wins")
	assert.Equal(t, 64, inner.opts.MaxTokens)

	_, err = model.GenerateContent(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inner.opts.Temperature)
}

func TestCreateLLM(t *testing.T) {
	model, err := CreateLLM(ModelConfig{Provider: "openai", ModelName: "gpt-4o-mini", Token: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, model)

	_, err = CreateLLM(ModelConfig{Provider: "cohere"})
	assert.ErrorContains(t, err, "unknown llm provider")

	_, err = CreateLLM(ModelConfig{Provider: "google", ModelName: "gemini-2.0-flash"})
	assert.ErrorContains(t, err, "API key is required")
}

func TestConvertMessages(t *testing.T) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "You are a grader."),
		llms.TextParts(llms.ChatMessageTypeHuman, "Question?"),
		llms.TextParts(llms.ChatMessageTypeAI, "Answer."),
		llms.TextParts(llms.ChatMessageTypeHuman, "Grade ", "it."),
	}

	contents, system := convertMessages(messages)
	assert.Equal(t, "You are a grader.", system)
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "Grade it.", contents[2].Parts[0].Text)
}

func TestBuildConfig(t *testing.T) {
	config := buildConfig(llms.CallOptions{Temperature: 0.2, MaxTokens: 100, StopWords: []string{"Observation:"}}, "sys")
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 1e-6)
	assert.Equal(t, int32(100), config.MaxOutputTokens)
	assert.Equal(t, []string{"Observation:"}, config.StopSequences)
	assert.Equal(t, "sys", config.SystemInstruction.Parts[0].Text)

	config = buildConfig(llms.CallOptions{}, "")
	assert.Nil(t, config.SystemInstruction)
	assert.Zero(t, config.MaxOutputTokens)
}

type fakeModels struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(`{"score": true}`, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}, nil
}

func TestGeminiGenerateContent(t *testing.T) {
	fake := &fakeModels{}
	g := &Gemini{models: fake, model: "gemini-2.0-flash"}

	out, err := g.Call(context.Background(), "grade this", llms.WithTemperature(0))
	require.NoError(t, err)
	assert.Equal(t, `{"score": true}`, out)
	assert.Equal(t, "gemini-2.0-flash", fake.model)
	require.Len(t, fake.contents, 1)
	assert.Equal(t, "grade this", fake.contents[0].Parts[0].Text)

	resp, err := g.GenerateContent(context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "x")},
		llms.WithModel("gemini-2.5-pro"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", fake.model)
	assert.Equal(t, "STOP", resp.Choices[0].StopReason)
}
