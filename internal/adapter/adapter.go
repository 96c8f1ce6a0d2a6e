package adapter

import (
	"context"
	"errors"
)

// DatabaseType database type enum
type DatabaseType string

const (
	MySQL      DatabaseType = "mysql"
	PostgreSQL DatabaseType = "postgresql"
	SQLite     DatabaseType = "sqlite"
)

// ErrTableNotFound is returned when a table does not exist in the store.
var ErrTableNotFound = errors.New("table not found")

// DBAdapter database adapter interface
// Lightweight: connects, runs SQL and bulk-replaces tables, no ORM
type DBAdapter interface {
	// Connect opens and pings the database
	Connect(ctx context.Context) error

	// Close closes the connection
	Close() error

	// ExecuteQuery runs a query and returns all rows
	ExecuteQuery(ctx context.Context, query string, args ...any) (*QueryResult, error)

	// GetDatabaseType returns "MySQL", "PostgreSQL" or "SQLite"
	GetDatabaseType() string

	// GetDatabaseVersion returns the server/library version
	GetDatabaseVersion(ctx context.Context) (string, error)

	// DryRunSQL validates SQL without returning its rows
	DryRunSQL(ctx context.Context, sql string) error

	// ListTables returns user table names in name order
	ListTables(ctx context.Context) ([]string, error)

	// DescribeTable returns column metadata, ErrTableNotFound if the table is missing
	DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error)

	// ReplaceTable drops and recreates table with the given rows in one transaction.
	// The previous table survives a failure on SQLite and PostgreSQL only.
	ReplaceTable(ctx context.Context, table string, columns []ColumnDef, rows [][]any) error
}

// QueryResult query result (unified)
type QueryResult struct {
	Columns       []string         // column names in select order
	Rows          []map[string]any // rows keyed by column
	RowCount      int
	ExecutionTime int64  // milliseconds
	Error         string // set when the query failed
}

// ColumnType storage class of a loaded column
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnReal
)

func (t ColumnType) String() string {
	switch t {
	case ColumnInteger:
		return "integer"
	case ColumnReal:
		return "real"
	default:
		return "text"
	}
}

// ColumnDef column to create in ReplaceTable
type ColumnDef struct {
	Name string
	Type ColumnType
}

// ColumnInfo column metadata as reported by the database
type ColumnInfo struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// DBConfig database connection config (generic)
type DBConfig struct {
	Type     string // "mysql", "postgresql", "sqlite"
	Host     string
	Port     int
	Database string
	User     string
	Password string

	// SQLite only
	FilePath string

	// PostgreSQL only
	SSLMode string

	// Pool settings (optional)
	MaxOpenConns int
	MaxIdleConns int
}

// NewAdapter factory: builds the adapter matching config.Type
func NewAdapter(config *DBConfig) (DBAdapter, error) {
	switch DatabaseType(config.Type) {
	case MySQL:
		return NewMySQLAdapter(&MySQLConfig{
			Host:         config.Host,
			Port:         config.Port,
			Database:     config.Database,
			User:         config.User,
			Password:     config.Password,
			MaxOpenConns: config.MaxOpenConns,
			MaxIdleConns: config.MaxIdleConns,
		}), nil
	case PostgreSQL:
		return NewPostgreSQLAdapter(&PostgreSQLConfig{
			Host:         config.Host,
			Port:         config.Port,
			Database:     config.Database,
			User:         config.User,
			Password:     config.Password,
			SSLMode:      config.SSLMode,
			MaxOpenConns: config.MaxOpenConns,
			MaxIdleConns: config.MaxIdleConns,
		}), nil
	case SQLite:
		return NewSQLiteAdapter(&SQLiteConfig{
			FilePath: config.FilePath,
		}), nil
	default:
		return nil, &UnsupportedDatabaseError{Type: config.Type}
	}
}

// Open parses a store URI, builds the adapter and connects it.
func Open(ctx context.Context, uri string) (DBAdapter, error) {
	config, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	a, err := NewAdapter(config)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// UnsupportedDatabaseError unsupported database type error
type UnsupportedDatabaseError struct {
	Type string
}

func (e *UnsupportedDatabaseError) Error() string {
	return "unsupported database type: " + e.Type
}
