package inference

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/tools"
	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

const (
	maxSampleLength = 1000 // execute_sql observation budget, in bytes
	sampleRows      = 3
)

// toolkit is the tool set handed to one agent run
type toolkit struct {
	sql   *SQLTool
	tools []tools.Tool
}

// newToolkit builds the SQL tools; observations are reported to handler
func newToolkit(db adapter.DBAdapter, cfg *Config, handler *PrettyReActHandler, logger *zap.Logger) *toolkit {
	scope := &tableScope{db: db, table: cfg.TableName}
	sqlTool := &SQLTool{adapter: db, useDryRun: cfg.UseDryRun, logger: logger}

	list := []tools.Tool{
		&ListTablesTool{scope: scope, logger: logger},
		&DescribeTableTool{scope: scope, logger: logger},
		sqlTool,
		NewVerifySQLTool(db, logger),
	}
	for i, t := range list {
		list[i] = &observedTool{Tool: t, handler: handler}
	}
	return &toolkit{sql: sqlTool, tools: list}
}

// observedTool records each observation on the step handler
type observedTool struct {
	tools.Tool
	handler *PrettyReActHandler
}

func (t *observedTool) Call(ctx context.Context, input string) (string, error) {
	output, err := t.Tool.Call(ctx, input)
	if err == nil && t.handler != nil {
		t.handler.recordObservation(output)
	}
	return output, err
}

// tableScope limits the visible tables to the bound table when one is set
type tableScope struct {
	db    adapter.DBAdapter
	table string
}

func (s *tableScope) list(ctx context.Context) ([]string, error) {
	tables, err := s.db.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if s.table == "" {
		return tables, nil
	}
	if slices.Contains(tables, s.table) {
		return []string{s.table}, nil
	}
	return nil, fmt.Errorf("table %s: %w", s.table, adapter.ErrTableNotFound)
}

func (s *tableScope) allowed(ctx context.Context, table string) (bool, error) {
	tables, err := s.list(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(tables, table), nil
}

// ListTablesTool lists the tables the agent may query
type ListTablesTool struct {
	scope  *tableScope
	logger *zap.Logger
}

func (t *ListTablesTool) Name() string {
	return "list_tables"
}

func (t *ListTablesTool) Description() string {
	return `List the tables in the database.
Input: empty string
Output: comma-separated table names`
}

func (t *ListTablesTool) Call(ctx context.Context, _ string) (string, error) {
	tables, err := t.scope.list(ctx)
	if err != nil {
		t.logger.Warn("list_tables failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err), nil
	}
	t.logger.Debug("Tool call", zap.String("tool", t.Name()), zap.Strings("tables", tables))
	if len(tables) == 0 {
		return "No tables found.", nil
	}
	return strings.Join(tables, ", "), nil
}

// DescribeTableTool returns columns, sample rows and value statistics
type DescribeTableTool struct {
	scope  *tableScope
	logger *zap.Logger
}

func (t *DescribeTableTool) Name() string {
	return "describe_table"
}

func (t *DescribeTableTool) Description() string {
	return `Show the schema, 3 sample rows and column value statistics for tables.
Input: comma-separated table names, e.g. "table1, table2". Call list_tables first.
Output: column names with types, sample rows, then distinct values or numeric ranges per column`
}

func (t *DescribeTableTool) Call(ctx context.Context, input string) (string, error) {
	names := splitTableNames(input)
	if len(names) == 0 {
		return "Error: provide at least one table name. Use list_tables to see available tables.", nil
	}
	t.logger.Debug("Tool call", zap.String("tool", t.Name()), zap.Strings("tables", names))

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString("\n")
		}
		ok, err := t.scope.allowed(ctx, name)
		if err != nil {
			return fmt.Sprintf("Error: %v", err), nil
		}
		if !ok {
			fmt.Fprintf(&sb, "Error: table %q does not exist. Use list_tables to see available tables.\n", name)
			continue
		}
		if err := t.describe(ctx, &sb, name); err != nil {
			fmt.Fprintf(&sb, "Error: %v\n", err)
		}
	}
	return sb.String(), nil
}

func (t *DescribeTableTool) describe(ctx context.Context, sb *strings.Builder, table string) error {
	db := t.scope.db
	columns, err := db.DescribeTable(ctx, table)
	if err != nil {
		return err
	}

	fmt.Fprintf(sb, "Table: %s\nColumns:\n", table)
	for _, col := range columns {
		fmt.Fprintf(sb, "  - %s (%s)\n", col.Name, col.Type)
	}

	quoted := quoteIdentifier(db.GetDatabaseType(), table)
	sample, err := db.ExecuteQuery(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoted, sampleRows))
	if err != nil {
		return fmt.Errorf("sample rows: %w", err)
	}
	fmt.Fprintf(sb, "Sample rows (%d):\n", sample.RowCount)
	if sample.RowCount == 0 {
		return nil
	}
	fmt.Fprintf(sb, "  %s\n", strings.Join(sample.Columns, " | "))
	for _, row := range sample.Rows {
		values := make([]string, len(sample.Columns))
		for i, col := range sample.Columns {
			values[i] = formatValue(row[col])
		}
		fmt.Fprintf(sb, "  %s\n", strings.Join(values, " | "))
	}

	profile, err := profileTable(ctx, db, table, columns)
	if err != nil {
		t.logger.Debug("Profile skipped", zap.String("table", table), zap.Error(err))
		return nil
	}
	profile.Format(sb)
	return nil
}

func splitTableNames(input string) []string {
	var names []string
	for _, part := range strings.Split(cleanSQLInput(input), ",") {
		name := strings.Trim(strings.TrimSpace(part), "\"`'")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func quoteIdentifier(dbType, name string) string {
	if dbType == "MySQL" {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// SQLTool SQL execution tool
type SQLTool struct {
	adapter        adapter.DBAdapter
	useDryRun      bool
	logger         *zap.Logger
	ExecutionCount int
}

func (t *SQLTool) Name() string {
	return "execute_sql"
}

func (t *SQLTool) Description() string {
	if t.useDryRun {
		return `Execute SQL query with dry run validation first.
Input: SQL query string
Output: Query results or validation errors`
	}
	return `Execute SQL query and return results.
Input: SQL query string
Output: Query results`
}

func (t *SQLTool) Call(ctx context.Context, input string) (string, error) {
	t.ExecutionCount++
	sql := cleanSQLInput(input)
	t.logger.Info("Tool call",
		zap.String("tool", t.Name()),
		zap.Int("execution", t.ExecutionCount),
		zap.String("sql", sql))

	if sql == "" {
		return "SQL execution failed: empty query", nil
	}

	// Dry Run validation (if enabled)
	if t.useDryRun {
		if err := t.adapter.DryRunSQL(ctx, sql); err != nil {
			return fmt.Sprintf("SQL validation failed: %v", err), nil
		}
	}

	result, err := t.adapter.ExecuteQuery(ctx, sql)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		t.logger.Debug("SQL execution failed", zap.Error(err))
		return fmt.Sprintf("SQL execution failed: %v", err), nil
	}

	output := fmt.Sprintf("Query executed successfully!\nRows: %d\n", result.RowCount)

	// Decide display based on char length not row count
	if result.RowCount > 0 {
		sampleStr := fmt.Sprintf("%v", result.Rows)
		if len(sampleStr) <= maxSampleLength {
			output += fmt.Sprintf("Sample results: %s\n", sampleStr)
		} else {
			truncated := truncateBytes(sampleStr, maxSampleLength)
			output += fmt.Sprintf("Sample results: %s... (truncated, showing first %d chars of %d total)\n",
				truncated, len(truncated), len(sampleStr))
		}
	}

	t.logger.Debug("Tool output", zap.String("tool", t.Name()), zap.Int("rows", result.RowCount),
		zap.Int64("elapsed_ms", result.ExecutionTime))
	return output, nil
}

// cleanSQLInput strips markdown fences and quotes models wrap tool input in
func cleanSQLInput(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 sequence
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
