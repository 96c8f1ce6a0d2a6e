package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// dialect holds the per-database SQL differences
type dialect interface {
	quoteIdent(name string) string
	placeholder(n int) string
	columnType(t ColumnType) string
	listTablesQuery() string
	versionQuery() string
	dryRunPrefix() string
	describeTable(ctx context.Context, c *sqlCore, table string) ([]ColumnInfo, error)
}

// sqlCore implements the database/sql side shared by all adapters
type sqlCore struct {
	db      *sql.DB
	dialect dialect
}

func (c *sqlCore) open(ctx context.Context, driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.db = db
	return nil
}

// Close closes connection
func (c *sqlCore) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// ExecuteQuery executes query
func (c *sqlCore) ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	if c.db == nil {
		return nil, errors.New("database not connected")
	}
	start := time.Now()

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return &QueryResult{
			Error:         err.Error(),
			ExecutionTime: time.Since(start).Milliseconds(),
		}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Columns:       columns,
		Rows:          result,
		RowCount:      len(result),
		ExecutionTime: time.Since(start).Milliseconds(),
	}, nil
}

// DryRunSQL validates SQL through the dialect's EXPLAIN form
func (c *sqlCore) DryRunSQL(ctx context.Context, sql string) error {
	_, err := c.ExecuteQuery(ctx, c.dialect.dryRunPrefix()+sql)
	return err
}

// GetDatabaseVersion gets database version
func (c *sqlCore) GetDatabaseVersion(ctx context.Context) (string, error) {
	result, err := c.ExecuteQuery(ctx, c.dialect.versionQuery())
	if err != nil {
		return "", err
	}
	if len(result.Rows) > 0 {
		if version, ok := result.Rows[0]["version"].(string); ok {
			return version, nil
		}
	}
	return "unknown", nil
}

// ListTables lists user tables
func (c *sqlCore) ListTables(ctx context.Context) ([]string, error) {
	result, err := c.ExecuteQuery(ctx, c.dialect.listTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	tables := make([]string, 0, result.RowCount)
	for _, row := range result.Rows {
		if name, ok := row["name"].(string); ok && name != "" {
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// DescribeTable describes table columns
func (c *sqlCore) DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	columns, err := c.dialect.describeTable(ctx, c, table)
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("describe table %s: %w", table, ErrTableNotFound)
	}
	return columns, nil
}

// ReplaceTable drops, recreates and fills table inside a single transaction.
// On any error the transaction is rolled back. SQLite and PostgreSQL keep the
// previous table; MySQL commits DDL implicitly, so there only the inserted
// rows are undone and the table is left empty.
func (c *sqlCore) ReplaceTable(ctx context.Context, table string, columns []ColumnDef, rows [][]any) (err error) {
	if c.db == nil {
		return errors.New("database not connected")
	}
	if len(columns) == 0 {
		return fmt.Errorf("replace table %s: no columns", table)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	quoted := c.dialect.quoteIdent(table)
	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err = tx.ExecContext(ctx, c.createTableSQL(table, columns)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, c.insertSQL(table, columns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			err = fmt.Errorf("row %d: got %d values, want %d", i+1, len(row), len(columns))
			return err
		}
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (c *sqlCore) createTableSQL(table string, columns []ColumnDef) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = c.dialect.quoteIdent(col.Name) + " " + c.dialect.columnType(col.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", c.dialect.quoteIdent(table), strings.Join(defs, ", "))
}

func (c *sqlCore) insertSQL(table string, columns []ColumnDef) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		names[i] = c.dialect.quoteIdent(col.Name)
		marks[i] = c.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.dialect.quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

// describeFromInformationSchema reads columns aliased as name/type/nullable
func describeFromInformationSchema(ctx context.Context, c *sqlCore, query, table string) ([]ColumnInfo, error) {
	result, err := c.ExecuteQuery(ctx, query, table)
	if err != nil {
		return nil, err
	}
	columns := make([]ColumnInfo, 0, result.RowCount)
	for _, row := range result.Rows {
		name, _ := row["name"].(string)
		if name == "" {
			continue
		}
		typ, _ := row["type"].(string)
		nullable, _ := row["nullable"].(string)
		columns = append(columns, ColumnInfo{
			Name:     name,
			Type:     typ,
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}
	return columns, nil
}

func quoteWith(name, quote string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}
