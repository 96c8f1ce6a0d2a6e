package evaluation

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"sqlassist/internal/llm"
)

// CorrectnessFunc scores an output against the reference answer
type CorrectnessFunc func(ctx context.Context, question, output, reference string) (Score, error)

// HelpfulnessFunc scores an output against the question alone
type HelpfulnessFunc func(ctx context.Context, question, output string) (Score, error)

// Judges the two scoring dimensions
type Judges struct {
	Correctness CorrectnessFunc
	Helpfulness HelpfulnessFunc
}

// LLMJudge grades outputs with a language model
type LLMJudge struct {
	model  llms.Model
	logger *zap.Logger
}

// NewLLMJudge creates a judge
func NewLLMJudge(model llms.Model, logger *zap.Logger) *LLMJudge {
	return &LLMJudge{model: model, logger: logger}
}

// Judges returns both judge functions backed by j
func (j *LLMJudge) Judges() Judges {
	return Judges{Correctness: j.Correctness, Helpfulness: j.Helpfulness}
}

// Correctness grades output against reference
func (j *LLMJudge) Correctness(ctx context.Context, question, output, reference string) (Score, error) {
	return j.grade(ctx, "correctness", fmt.Sprintf(correctnessPrompt, question, output, reference))
}

// Helpfulness grades output against the question
func (j *LLMJudge) Helpfulness(ctx context.Context, question, output string) (Score, error) {
	return j.grade(ctx, "helpfulness", fmt.Sprintf(helpfulnessPrompt, question, output))
}

type verdict struct {
	Reasoning string `json:"reasoning"`
	Score     any    `json:"score"`
}

func (j *LLMJudge) grade(ctx context.Context, key, prompt string) (Score, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, judgeSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := j.model.GenerateContent(ctx, messages)
	if err != nil {
		return Score{}, fmt.Errorf("%s judge: %w", key, err)
	}
	if len(resp.Choices) == 0 {
		return Score{}, fmt.Errorf("%s judge: empty response", key)
	}

	content := resp.Choices[0].Content
	v, err := llm.ParseJSONResponse[verdict](content)
	if err != nil {
		j.logger.Debug("Unparseable judge response", zap.String("judge", key), zap.String("content", content))
		return Score{}, fmt.Errorf("%s judge: %w", key, err)
	}
	value, err := NormalizeScore(v.Score)
	if err != nil {
		return Score{}, fmt.Errorf("%s judge: %w", key, err)
	}

	j.logger.Debug("Judge verdict", zap.String("judge", key), zap.Float64("score", value),
		zap.String("reasoning", v.Reasoning))
	return Score{Value: value, Reasoning: v.Reasoning}, nil
}
