package inference

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

func TestSQLToolExecutes(t *testing.T) {
	db, _ := openEarningsStore(t)
	tool := &SQLTool{adapter: db, logger: zap.NewNop()}

	out, err := tool.Call(context.Background(), "```sql\nSELECT COUNT(*) AS n FROM earnings\n```")
	require.NoError(t, err)
	assert.Contains(t, out, "Query executed successfully!")
	assert.Contains(t, out, "Rows: 1")
	assert.Contains(t, out, "n:3")
	assert.Equal(t, 1, tool.ExecutionCount)
}

func TestSQLToolErrorIsObservation(t *testing.T) {
	db, _ := openEarningsStore(t)
	tool := &SQLTool{adapter: db, logger: zap.NewNop()}

	out, err := tool.Call(context.Background(), "SELECT nope FROM earnings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "SQL execution failed:"), out)

	tool.useDryRun = true
	out, err = tool.Call(context.Background(), "SELECT nope FROM earnings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "SQL validation failed:"), out)
	assert.Equal(t, 2, tool.ExecutionCount)
}

func TestSQLToolTruncatesLongResults(t *testing.T) {
	ctx := context.Background()
	db, _ := openEarningsStore(t)
	rows := make([][]any, 200)
	for i := range rows {
		rows[i] = []any{strings.Repeat("x", 20)}
	}
	require.NoError(t, db.ReplaceTable(ctx, "wide", []adapter.ColumnDef{{Name: "v", Type: adapter.ColumnText}}, rows))

	tool := &SQLTool{adapter: db, logger: zap.NewNop()}
	out, err := tool.Call(ctx, "SELECT v FROM wide")
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 200")
	assert.Contains(t, out, "(truncated, showing first 1000 chars of")
}

func TestListTablesTool(t *testing.T) {
	db, _ := openEarningsStore(t)
	ctx := context.Background()

	all := &ListTablesTool{scope: &tableScope{db: db}, logger: zap.NewNop()}
	out, err := all.Call(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "earnings, other", out)

	bound := &ListTablesTool{scope: &tableScope{db: db, table: "earnings"}, logger: zap.NewNop()}
	out, err = bound.Call(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "earnings", out)

	missing := &ListTablesTool{scope: &tableScope{db: db, table: "gone"}, logger: zap.NewNop()}
	out, err = missing.Call(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, out, "table not found")
}

func TestDescribeTableTool(t *testing.T) {
	db, _ := openEarningsStore(t)
	tool := &DescribeTableTool{scope: &tableScope{db: db, table: "earnings"}, logger: zap.NewNop()}

	out, err := tool.Call(context.Background(), "earnings")
	require.NoError(t, err)
	assert.Contains(t, out, "Table: earnings")
	assert.Contains(t, out, "  - Earnings_USD (REAL)")
	assert.Contains(t, out, "Sample rows (3):")
	assert.Contains(t, out, "Freelancer_ID | Job_Category | Earnings_USD")
	assert.Contains(t, out, "1 | Graphic Design | 5000")
	assert.Contains(t, out, "Column values (3 rows):")

	out, err = tool.Call(context.Background(), "other")
	require.NoError(t, err)
	assert.Contains(t, out, `table "other" does not exist`)

	out, err = tool.Call(context.Background(), "  ")
	require.NoError(t, err)
	assert.Contains(t, out, "provide at least one table name")
}

func TestVerifySQLTool(t *testing.T) {
	db, _ := openEarningsStore(t)
	tool := NewVerifySQLTool(db, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"valid", "SELECT Job_Category FROM earnings WHERE Freelancer_ID = 1", "✓ SQL is valid!"},
		{"illegal alias", "SELECT COUNT(*) AS count(*) FROM earnings", "illegal alias syntax"},
		{"unbalanced", "SELECT (1 FROM earnings", "unmatched opening parenthesis"},
		{"extra close", "SELECT 1) FROM earnings", "unmatched closing parenthesis"},
		{"db error", "SELECT nope FROM earnings", "database check"},
		{"zero rows", "SELECT * FROM earnings WHERE Freelancer_ID = 99", "Query returned 0 rows"},
		{"duplicates", "SELECT Job_Category FROM earnings WHERE Job_Category = 'Graphic Design'", "duplicate rows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tool.Call(ctx, tt.sql)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCheckParenthesesIgnoresStrings(t *testing.T) {
	assert.NoError(t, checkParentheses("SELECT * FROM t WHERE a = ':)'"))
}

func TestCleanSQLInput(t *testing.T) {
	assert.Equal(t, "SELECT 1", cleanSQLInput("  \"SELECT 1\" "))
	assert.Equal(t, "SELECT 1", cleanSQLInput("```sql\nSELECT 1\n```"))
	assert.Equal(t, "SELECT 'a'", cleanSQLInput("SELECT 'a'"))
}

func TestTruncateBytesKeepsRunes(t *testing.T) {
	s := "доход"
	got := truncateBytes(s, 3)
	assert.Equal(t, "д", got)
	assert.Equal(t, s, truncateBytes(s, 100))
}
