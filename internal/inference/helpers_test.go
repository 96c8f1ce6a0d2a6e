package inference

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"sqlassist/internal/adapter"
)

// openEarningsStore returns a SQLite store with a small earnings table
func openEarningsStore(t *testing.T) (adapter.DBAdapter, string) {
	t.Helper()
	ctx := context.Background()
	uri := adapter.SQLiteURI(filepath.Join(t.TempDir(), "earnings.db"))
	db, err := adapter.Open(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	columns := []adapter.ColumnDef{
		{Name: "Freelancer_ID", Type: adapter.ColumnInteger},
		{Name: "Job_Category", Type: adapter.ColumnText},
		{Name: "Earnings_USD", Type: adapter.ColumnReal},
	}
	rows := [][]any{
		{int64(1), "Graphic Design", 5000.0},
		{int64(2), "Graphic Design", 3000.0},
		{int64(3), "Web Development", 4000.0},
	}
	require.NoError(t, db.ReplaceTable(ctx, "earnings", columns, rows))
	require.NoError(t, db.ReplaceTable(ctx, "other", []adapter.ColumnDef{{Name: "x", Type: adapter.ColumnInteger}}, nil))
	return db, uri
}

// scriptedModel replies with canned completions in order
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("script exhausted")
	}
	next := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: next}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}
