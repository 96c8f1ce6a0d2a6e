package inference

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"sqlassist/internal/adapter"
)

// Match AS followed by function-call aliases, e.g. AS count(*), AS sum(x)
var illegalAliasPattern = regexp.MustCompile(`(?i)\s+AS\s+([a-z_]+\s*\([^)]*\))`)

// VerifySQLTool SQL syntax verification tool
type VerifySQLTool struct {
	adapter adapter.DBAdapter
	logger  *zap.Logger
}

// NewVerifySQLTool creates verification tool
func NewVerifySQLTool(db adapter.DBAdapter, logger *zap.Logger) *VerifySQLTool {
	return &VerifySQLTool{
		adapter: db,
		logger:  logger,
	}
}

// Name returns tool name
func (t *VerifySQLTool) Name() string {
	return "verify_sql"
}

// Description returns tool description
func (t *VerifySQLTool) Description() string {
	return `Verify a SQL query before relying on its result.
Checks for common syntax errors, then runs the query against the database.

Input: SQL query string to verify
Output: "✓ SQL is valid" with optional warnings, or an error message

Common errors detected:
- Illegal aliases like "AS count(*)" or "AS sum(*)"
- Unmatched parentheses
- Queries returning no rows or duplicate rows`
}

// Call executes verification
func (t *VerifySQLTool) Call(ctx context.Context, input string) (string, error) {
	sql := cleanSQLInput(input)
	t.logger.Info("Tool call", zap.String("tool", t.Name()), zap.String("sql", sql))

	// 1. Quick static check
	if err := quickCheck(sql); err != nil {
		return fmt.Sprintf("❌ SQL validation failed (static check):\n%v\n\nPlease fix the error and try again.", err), nil
	}

	// 2. Execute against the database
	data, err := t.adapter.ExecuteQuery(ctx, sql)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return fmt.Sprintf("❌ SQL validation failed (database check):\n%v\n\nPlease fix the error and try again.", err), nil
	}

	// 3. Row count and duplicates
	var warnings []string
	if data.RowCount == 0 {
		warnings = append(warnings, "⚠️  Warning: Query returned 0 rows. Please double-check:\n  - Are the WHERE conditions too restrictive?\n  - Do the filter values match the stored values exactly?")
	}
	if duplicateWarning := checkDuplicateRows(data); duplicateWarning != "" {
		warnings = append(warnings, duplicateWarning)
	}

	result := "✓ SQL is valid!"
	if len(warnings) > 0 {
		result += "\n" + strings.Join(warnings, "\n")
	}
	t.logger.Debug("Tool output", zap.String("tool", t.Name()), zap.Int("warnings", len(warnings)))
	return result, nil
}

// quickCheck quick static check
func quickCheck(sql string) error {
	if sql == "" {
		return fmt.Errorf("empty query")
	}
	if err := checkIllegalAliases(sql); err != nil {
		return err
	}
	return checkParentheses(sql)
}

// checkIllegalAliases checks illegal aliases
func checkIllegalAliases(sql string) error {
	matches := illegalAliasPattern.FindAllStringSubmatch(sql, -1)
	if len(matches) == 0 {
		return nil
	}
	aliases := make([]string, 0, len(matches))
	for _, match := range matches {
		aliases = append(aliases, match[1])
	}
	return fmt.Errorf("illegal alias syntax: %v\nAliases cannot contain parentheses.\nUse simple names like 'total_count' instead of 'count(*)'", aliases)
}

// checkParentheses checks parentheses matching, ignoring string literals
func checkParentheses(sql string) error {
	depth := 0
	inString := false
	for i, char := range sql {
		switch {
		case char == '\'':
			inString = !inString
		case inString:
		case char == '(':
			depth++
		case char == ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unmatched closing parenthesis at position %d", i)
			}
		}
	}
	if depth > 0 {
		return fmt.Errorf("unmatched opening parenthesis: %d unclosed", depth)
	}
	return nil
}

// checkDuplicateRows checks for duplicate rows
func checkDuplicateRows(data *adapter.QueryResult) string {
	if data.RowCount < 2 {
		return ""
	}

	seen := make(map[string]bool, data.RowCount)
	for _, row := range data.Rows {
		values := make([]string, len(data.Columns))
		for i, col := range data.Columns {
			values[i] = formatValue(row[col])
		}
		rowKey := strings.Join(values, "||<SEP>||")
		if seen[rowKey] {
			return fmt.Sprintf("Warning: The query returned duplicate rows (e.g., %v). Review the question to determine if duplicates should be removed using DISTINCT.", values)
		}
		seen[rowKey] = true
	}
	return ""
}
