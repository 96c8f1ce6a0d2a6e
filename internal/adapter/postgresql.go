package adapter

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"
)

// PostgreSQLAdapter PostgreSQL adapter
type PostgreSQLAdapter struct {
	sqlCore
	config *PostgreSQLConfig
}

// PostgreSQLConfig PostgreSQL connection config
type PostgreSQLConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string // disable, require, verify-ca, verify-full

	MaxOpenConns int
	MaxIdleConns int
}

// NewPostgreSQLAdapter creates PostgreSQL adapter
func NewPostgreSQLAdapter(config *PostgreSQLConfig) *PostgreSQLAdapter {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}
	if config.Port == 0 {
		config.Port = 5432
	}
	return &PostgreSQLAdapter{
		sqlCore: sqlCore{dialect: postgresDialect{}},
		config:  config,
	}
}

// DSN builds the lib/pq connection URL
func (a *PostgreSQLAdapter) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(a.config.Host, strconv.Itoa(a.config.Port)),
		Path:     "/" + a.config.Database,
		RawQuery: url.Values{"sslmode": {a.config.SSLMode}}.Encode(),
	}
	if a.config.User != "" {
		u.User = url.UserPassword(a.config.User, a.config.Password)
	}
	return u.String()
}

// Connect connects to database
func (a *PostgreSQLAdapter) Connect(ctx context.Context) error {
	if err := a.open(ctx, "postgres", a.DSN()); err != nil {
		return err
	}
	if a.config.MaxOpenConns > 0 {
		a.db.SetMaxOpenConns(a.config.MaxOpenConns)
	}
	if a.config.MaxIdleConns > 0 {
		a.db.SetMaxIdleConns(a.config.MaxIdleConns)
	}
	return nil
}

// GetDatabaseType gets database type
func (a *PostgreSQLAdapter) GetDatabaseType() string {
	return "PostgreSQL"
}

type postgresDialect struct{}

func (postgresDialect) quoteIdent(name string) string { return quoteWith(name, `"`) }

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) columnType(t ColumnType) string {
	switch t {
	case ColumnInteger:
		return "BIGINT"
	case ColumnReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func (postgresDialect) listTablesQuery() string {
	return "SELECT tablename AS name FROM pg_tables WHERE schemaname = current_schema() ORDER BY tablename"
}

func (postgresDialect) versionQuery() string { return "SELECT version() AS version" }

func (postgresDialect) dryRunPrefix() string { return "EXPLAIN " }

func (postgresDialect) describeTable(ctx context.Context, c *sqlCore, table string) ([]ColumnInfo, error) {
	query := fmt.Sprint("SELECT column_name AS name, data_type AS type, is_nullable AS nullable ",
		"FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ",
		"ORDER BY ordinal_position")
	return describeFromInformationSchema(ctx, c, query, table)
}
