package inference

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// Log modes
const (
	LogModeSimple = "simple"
	LogModeFull   = "full"
)

// PrettyReActHandler ReAct log handler with step collection
type PrettyReActHandler struct {
	logger  *zap.Logger
	logMode string // "simple" or "full"

	mu             sync.Mutex
	iterationCount int
	collectedSteps []CollectedStep
	currentStep    *CollectedStep
}

var _ callbacks.Handler = &PrettyReActHandler{}

// NewPrettyReActHandler creates a handler for one agent run
func NewPrettyReActHandler(logger *zap.Logger, logMode string) *PrettyReActHandler {
	return &PrettyReActHandler{logger: logger, logMode: logMode}
}

// CollectedStep represents a collected ReAct step
type CollectedStep struct {
	Step        int       `json:"step"`
	Thought     string    `json:"thought,omitempty"`
	Action      string    `json:"action,omitempty"`
	ActionInput string    `json:"action_input,omitempty"`
	Observation string    `json:"observation,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *CollectedStep) empty() bool {
	return s.Action == "" && s.Thought == "" && s.Observation == ""
}

// GetCollectedSteps returns all collected steps
func (h *PrettyReActHandler) GetCollectedSteps() []CollectedStep {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.finalizeCurrentStep()
	return append([]CollectedStep(nil), h.collectedSteps...)
}

// Iterations returns how many planner calls were seen
func (h *PrettyReActHandler) Iterations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.iterationCount
}

// finalizeCurrentStep appends the pending step (locked)
func (h *PrettyReActHandler) finalizeCurrentStep() {
	if h.currentStep != nil && !h.currentStep.empty() {
		h.collectedSteps = append(h.collectedSteps, *h.currentStep)
	}
	h.currentStep = nil
}

// step returns the pending step, opening one if the planner callbacks did not (locked)
func (h *PrettyReActHandler) step() *CollectedStep {
	if h.currentStep == nil {
		h.currentStep = &CollectedStep{
			Step:      len(h.collectedSteps) + 1,
			Timestamp: time.Now(),
		}
	}
	return h.currentStep
}

// nextStep is step, but a step that already carries an action is closed first (locked)
func (h *PrettyReActHandler) nextStep() *CollectedStep {
	if h.currentStep != nil && h.currentStep.Action != "" {
		h.finalizeCurrentStep()
	}
	return h.step()
}

func (h *PrettyReActHandler) recordObservation(output string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.step().Observation = output
}

func (h *PrettyReActHandler) HandleText(_ context.Context, _ string) {}

func (h *PrettyReActHandler) HandleLLMStart(_ context.Context, prompts []string) {
	if h.logMode == LogModeFull {
		for i, prompt := range prompts {
			h.logger.Info("LLM prompt", zap.Int("index", i+1), zap.String("prompt", prompt))
		}
	}
}

func (h *PrettyReActHandler) HandleLLMGenerateContentStart(_ context.Context, _ []llms.MessageContent) {
}

func (h *PrettyReActHandler) HandleLLMGenerateContentEnd(_ context.Context, res *llms.ContentResponse) {
	if h.logMode == LogModeFull && res != nil {
		for i, choice := range res.Choices {
			h.logger.Info("LLM response", zap.Int("choice", i+1), zap.String("content", choice.Content))
		}
	}
}

func (h *PrettyReActHandler) HandleLLMError(_ context.Context, err error) {
	h.logger.Error("LLM error", zap.Error(err))
}

func (h *PrettyReActHandler) HandleChainStart(_ context.Context, _ map[string]any) {
	// Each chain start is one planner iteration
	h.mu.Lock()
	defer h.mu.Unlock()

	h.iterationCount++
	h.finalizeCurrentStep()
	h.currentStep = &CollectedStep{
		Step:      len(h.collectedSteps) + 1,
		Timestamp: time.Now(),
	}
	h.logger.Debug("ReAct iteration", zap.Int("iteration", h.iterationCount))
}

func (h *PrettyReActHandler) HandleChainEnd(_ context.Context, outputs map[string]any) {
	text, ok := outputs["text"].(string)
	if !ok {
		return
	}
	thought := extractThought(text)

	h.mu.Lock()
	h.nextStep().Thought = thought
	h.mu.Unlock()

	if h.logMode == LogModeFull {
		h.logger.Info("ReAct response", zap.String("text", text))
	} else if thought != "" {
		h.logger.Info("💭 Thought", zap.String("thought", truncate(thought, 120)))
	}
}

func (h *PrettyReActHandler) HandleChainError(_ context.Context, err error) {
	h.logger.Warn("Chain error", zap.Error(err))
}

func (h *PrettyReActHandler) HandleToolStart(_ context.Context, _ string) {}

func (h *PrettyReActHandler) HandleToolEnd(_ context.Context, output string) {
	h.recordObservation(output)
	if h.logMode == LogModeFull {
		h.logger.Info("Tool output", zap.String("output", output))
	}
}

func (h *PrettyReActHandler) HandleToolError(_ context.Context, err error) {
	h.logger.Warn("Tool error", zap.Error(err))
	h.recordObservation("Error: " + err.Error())
}

func (h *PrettyReActHandler) HandleAgentAction(_ context.Context, action schema.AgentAction) {
	h.mu.Lock()
	step := h.nextStep()
	step.Action = action.Tool
	step.ActionInput = action.ToolInput
	h.mu.Unlock()

	input := action.ToolInput
	if h.logMode != LogModeFull {
		input = truncate(input, 100)
	}
	h.logger.Info("🎯 Action", zap.String("tool", action.Tool), zap.String("input", input))
}

func (h *PrettyReActHandler) HandleAgentFinish(_ context.Context, finish schema.AgentFinish) {
	output, ok := finish.ReturnValues["output"].(string)
	if !ok {
		return
	}

	h.mu.Lock()
	step := h.nextStep()
	step.Action = "Final Answer"
	step.ActionInput = strings.TrimSpace(output)
	h.mu.Unlock()

	h.logger.Info("✅ Final Answer", zap.String("answer", truncate(output, 150)))
}

func (h *PrettyReActHandler) HandleRetrieverStart(_ context.Context, _ string) {}

func (h *PrettyReActHandler) HandleRetrieverEnd(_ context.Context, _ string, _ []schema.Document) {
}

func (h *PrettyReActHandler) HandleStreamingFunc(_ context.Context, _ []byte) {}

// extractThought extracts thought from LLM response text
func extractThought(text string) string {
	if idx := strings.Index(text, "Thought:"); idx >= 0 {
		thought := text[idx+len("Thought:"):]
		// Find Action or Final Answer position
		if actionIdx := strings.Index(thought, "Action:"); actionIdx >= 0 {
			return strings.TrimSpace(thought[:actionIdx])
		} else if finalIdx := strings.Index(thought, "Final Answer:"); finalIdx >= 0 {
			return strings.TrimSpace(thought[:finalIdx])
		}
		return strings.TrimSpace(thought)
	}
	return ""
}

// truncate truncates long text
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return truncateBytes(s, maxLen) + "..."
}
