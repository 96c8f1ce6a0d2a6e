package inference

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

func TestAgentAnswersWithToolCall(t *testing.T) {
	db, _ := openEarningsStore(t)
	model := &scriptedModel{responses: []string{
		"Thought: I should count the freelancers.\nAction: execute_sql\nAction Input: SELECT COUNT(*) AS n FROM earnings",
		"Thought: I now know the final answer.\nFinal Answer: There are 3 freelancers.",
	}}
	agent := NewSQLAgent(db, model, &Config{TableName: "earnings", MaxIterations: 5}, zap.NewNop())

	result, err := agent.Execute(context.Background(), "How many freelancers are there?")
	require.NoError(t, err)
	assert.Equal(t, "There are 3 freelancers.", result.Answer)
	assert.Equal(t, 1, result.SQLExecutions)
	assert.Equal(t, 2, result.LLMCalls)
	assert.Zero(t, result.TotalTokens)
	require.NotEmpty(t, result.Steps)
	assert.Equal(t, "execute_sql", result.Steps[0].Action)
	assert.Contains(t, result.Steps[0].Observation, "n:3")

	require.NotEmpty(t, model.prompts)
	assert.Contains(t, model.prompts[0], "How many freelancers are there?")
	assert.Contains(t, model.prompts[0], "**Database Type: SQLite**")
	assert.Contains(t, model.prompts[0], "describe_table")
}

func TestAskIsStateless(t *testing.T) {
	db, _ := openEarningsStore(t)
	model := &scriptedModel{responses: []string{"Thought: easy\nFinal Answer:  Graphic Design "}}
	agent := NewSQLAgent(db, model, &Config{}, zap.NewNop())

	first, err := agent.Ask(context.Background(), "Top category?")
	require.NoError(t, err)
	second, err := agent.Ask(context.Background(), "Top category again?")
	require.NoError(t, err)
	assert.Equal(t, "Graphic Design", first)
	assert.Equal(t, first, second)
	assert.NotContains(t, model.prompts[len(model.prompts)-1], "Top category?")
}

func TestAskPropagatesModelError(t *testing.T) {
	db, _ := openEarningsStore(t)
	model := &scriptedModel{err: errors.New("rate limited")}
	agent := NewSQLAgent(db, model, &Config{}, zap.NewNop())

	_, err := agent.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAskStopsAtMaxIterations(t *testing.T) {
	db, _ := openEarningsStore(t)
	model := &scriptedModel{responses: []string{
		"Thought: again\nAction: list_tables\nAction Input: all",
	}}
	agent := NewSQLAgent(db, model, &Config{MaxIterations: 2}, zap.NewNop())

	_, err := agent.Ask(context.Background(), "loop forever")
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	_, uri := openEarningsStore(t)
	ctx := context.Background()
	model := &scriptedModel{}

	agent, err := Build(ctx, uri, model, &Config{TableName: "earnings"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, agent.Close())

	_, err = Build(ctx, uri, model, &Config{TableName: "missing"}, zap.NewNop())
	assert.ErrorIs(t, err, adapter.ErrTableNotFound)

	_, err = Build(ctx, "oracle://h/db", model, &Config{}, zap.NewNop())
	assert.Error(t, err)

	_, err = Build(ctx, adapter.SQLiteURI(filepath.Join(t.TempDir(), "none", "x.db")), model, &Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := (&Config{}).withDefaults()
	assert.Equal(t, 15, cfg.MaxIterations)
	assert.Equal(t, 10, cfg.TopK)
	assert.Equal(t, LogModeSimple, cfg.LogMode)
}
