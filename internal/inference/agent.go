package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

// Config agent settings
type Config struct {
	TableName     string // bound table; empty exposes every table
	MaxIterations int
	LogMode       string // "simple" or "full"
	UseDryRun     bool   // validate with EXPLAIN before execute_sql runs a query
	TopK          int    // default LIMIT suggested to the model
	CountTokens   bool   // count prompt/response tokens with cl100k_base
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.MaxIterations <= 0 {
		out.MaxIterations = 15
	}
	if out.TopK <= 0 {
		out.TopK = 10
	}
	if out.LogMode == "" {
		out.LogMode = LogModeSimple
	}
	return &out
}

// Result one answered question
type Result struct {
	Question      string
	Answer        string
	Steps         []CollectedStep
	LLMCalls      int
	SQLExecutions int
	TotalTokens   int
	Duration      time.Duration
}

// SQLAgent answers natural-language questions with a ReAct loop over the SQL toolkit
type SQLAgent struct {
	db        adapter.DBAdapter
	llm       llms.Model
	config    *Config
	logger    *zap.Logger
	tokenizer *tiktoken.Tiktoken
}

// NewSQLAgent creates an agent over an open adapter
func NewSQLAgent(db adapter.DBAdapter, llm llms.Model, cfg *Config, logger *zap.Logger) *SQLAgent {
	cfg = cfg.withDefaults()
	a := &SQLAgent{
		db:     db,
		llm:    llm,
		config: cfg,
		logger: logger,
	}
	if cfg.CountTokens {
		tokenizer, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// token statistics are skipped without a tokenizer
			logger.Warn("Tokenizer unavailable", zap.Error(err))
		} else {
			a.tokenizer = tokenizer
		}
	}
	return a
}

// Build opens the store behind storeURI and returns an agent bound to it.
// The bound table, when configured, must exist.
func Build(ctx context.Context, storeURI string, llm llms.Model, cfg *Config, logger *zap.Logger) (*SQLAgent, error) {
	db, err := adapter.Open(ctx, storeURI)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", adapter.SanitizeURI(storeURI), err)
	}
	if cfg.TableName != "" {
		if _, err := db.DescribeTable(ctx, cfg.TableName); err != nil {
			db.Close()
			return nil, fmt.Errorf("bind table: %w", err)
		}
	}

	version, _ := db.GetDatabaseVersion(ctx)
	logger.Info("SQL agent ready",
		zap.String("store", adapter.SanitizeURI(storeURI)),
		zap.String("database", db.GetDatabaseType()),
		zap.String("version", version),
		zap.String("table", cfg.TableName))
	return NewSQLAgent(db, llm, cfg, logger), nil
}

// Close closes the underlying store
func (a *SQLAgent) Close() error {
	return a.db.Close()
}

// Ask answers one question. Calls are independent: no memory carries over.
func (a *SQLAgent) Ask(ctx context.Context, question string) (string, error) {
	result, err := a.Execute(ctx, question)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Execute answers one question and reports the ReAct trace
func (a *SQLAgent) Execute(ctx context.Context, question string) (*Result, error) {
	start := time.Now()
	handler := NewPrettyReActHandler(a.logger, a.config.LogMode)
	kit := newToolkit(a.db, a.config, handler, a.logger)
	recorder := &recordingModel{Model: a.llm}

	prefix := buildPromptPrefix(a.db.GetDatabaseType(), a.config.TableName, a.config.TopK)
	executor, err := agents.Initialize(
		recorder,
		kit.tools,
		agents.ZeroShotReactDescription,
		agents.WithMaxIterations(a.config.MaxIterations),
		agents.WithCallbacksHandler(handler),
		agents.WithPromptPrefix(prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize agent: %w", err)
	}

	a.logger.Info("🔄 Starting ReAct loop",
		zap.String("question", question),
		zap.Int("max_iterations", a.config.MaxIterations))

	output, err := executor.Call(ctx, map[string]any{"input": question})
	if err != nil {
		if errors.Is(err, agents.ErrNotFinished) {
			return nil, fmt.Errorf("agent stopped after %d iterations without an answer: %w", a.config.MaxIterations, err)
		}
		return nil, fmt.Errorf("agent: %w", err)
	}

	answer, ok := output["output"].(string)
	if !ok {
		return nil, errors.New("agent returned no answer")
	}

	result := &Result{
		Question:      question,
		Answer:        strings.TrimSpace(answer),
		Steps:         handler.GetCollectedSteps(),
		LLMCalls:      recorder.calls(),
		SQLExecutions: kit.sql.ExecutionCount,
		TotalTokens:   a.countTokens(recorder.texts()),
		Duration:      time.Since(start),
	}
	a.logger.Info("ReAct loop completed",
		zap.Int("llm_calls", result.LLMCalls),
		zap.Int("sql_executions", result.SQLExecutions),
		zap.Int("tokens", result.TotalTokens),
		zap.Duration("elapsed", result.Duration))
	return result, nil
}

// countTokens sums token counts over texts; 0 without a tokenizer
func (a *SQLAgent) countTokens(texts []string) int {
	if a.tokenizer == nil {
		return 0
	}
	total := 0
	for _, text := range texts {
		total += len(a.tokenizer.Encode(text, nil, nil))
	}
	return total
}

// recordingModel keeps prompt and response texts for token accounting
type recordingModel struct {
	llms.Model

	mu       sync.Mutex
	n        int
	recorded []string
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	resp, err := m.Model.GenerateContent(ctx, messages, opts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.recorded = append(m.recorded, text.Text)
			}
		}
	}
	if err == nil && resp != nil {
		for _, choice := range resp.Choices {
			m.recorded = append(m.recorded, choice.Content)
		}
	}
	return resp, err
}

func (m *recordingModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}

func (m *recordingModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

func (m *recordingModel) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.recorded...)
}
