package adapter

import (
	"context"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteAdapter SQLite adapter
type SQLiteAdapter struct {
	sqlCore
	config *SQLiteConfig
}

// SQLiteConfig SQLite connection config
type SQLiteConfig struct {
	FilePath string // DB file path, ":memory:" for in-memory
}

// NewSQLiteAdapter creates SQLite adapter
func NewSQLiteAdapter(config *SQLiteConfig) *SQLiteAdapter {
	return &SQLiteAdapter{
		sqlCore: sqlCore{dialect: sqliteDialect{}},
		config:  config,
	}
}

// Connect connects to database
func (a *SQLiteAdapter) Connect(ctx context.Context) error {
	if a.config.FilePath == "" {
		return fmt.Errorf("sqlite: empty file path")
	}
	if err := a.open(ctx, "sqlite", a.config.FilePath); err != nil {
		return err
	}
	// one writer; also keeps ":memory:" on a single database
	a.db.SetMaxOpenConns(1)
	return nil
}

// GetDatabaseType gets database type
func (a *SQLiteAdapter) GetDatabaseType() string {
	return "SQLite"
}

type sqliteDialect struct{}

func (sqliteDialect) quoteIdent(name string) string { return quoteWith(name, `"`) }

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) columnType(t ColumnType) string {
	switch t {
	case ColumnInteger:
		return "INTEGER"
	case ColumnReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (sqliteDialect) listTablesQuery() string {
	return "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
}

func (sqliteDialect) versionQuery() string { return "SELECT sqlite_version() AS version" }

// SQLite: EXPLAIN QUERY PLAN validates without running
func (sqliteDialect) dryRunPrefix() string { return "EXPLAIN QUERY PLAN " }

func (d sqliteDialect) describeTable(ctx context.Context, c *sqlCore, table string) ([]ColumnInfo, error) {
	result, err := c.ExecuteQuery(ctx, fmt.Sprintf("PRAGMA table_info(%s)", d.quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	columns := make([]ColumnInfo, 0, result.RowCount)
	for _, row := range result.Rows {
		name, _ := row["name"].(string)
		typ, _ := row["type"].(string)
		notNull, _ := row["notnull"].(int64)
		pk, _ := row["pk"].(int64)
		columns = append(columns, ColumnInfo{
			Name:       name,
			Type:       typ,
			Nullable:   notNull == 0,
			PrimaryKey: pk > 0,
		})
	}
	return columns, nil
}
