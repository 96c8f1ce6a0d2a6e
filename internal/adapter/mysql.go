package adapter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// MySQLAdapter MySQL adapter
type MySQLAdapter struct {
	sqlCore
	config *MySQLConfig
}

// MySQLConfig MySQL connection config
type MySQLConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	MaxOpenConns int
	MaxIdleConns int
}

// NewMySQLAdapter creates MySQL adapter
func NewMySQLAdapter(config *MySQLConfig) *MySQLAdapter {
	if config.Port == 0 {
		config.Port = 3306
	}
	return &MySQLAdapter{
		sqlCore: sqlCore{dialect: mysqlDialect{}},
		config:  config,
	}
}

// DSN builds the go-sql-driver DSN
func (a *MySQLAdapter) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = a.config.User
	cfg.Passwd = a.config.Password
	cfg.Net = "tcp"
	cfg.Addr = a.config.Host + ":" + strconv.Itoa(a.config.Port)
	cfg.DBName = a.config.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Connect connects to database
func (a *MySQLAdapter) Connect(ctx context.Context) error {
	if err := a.open(ctx, "mysql", a.DSN()); err != nil {
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
func (a *MySQLAdapter) GetDatabaseType() string {
	return "MySQL"
}

type mysqlDialect struct{}

func (mysqlDialect) quoteIdent(name string) string { return quoteWith(name, "`") }

func (mysqlDialect) placeholder(int) string { return "?" }

func (mysqlDialect) columnType(t ColumnType) string {
	switch t {
	case ColumnInteger:
		return "BIGINT"
	case ColumnReal:
		return "DOUBLE"
	default:
		return "TEXT"
	}
}

func (mysqlDialect) listTablesQuery() string {
	return "SELECT table_name AS name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
}

func (mysqlDialect) versionQuery() string { return "SELECT VERSION() AS version" }

func (mysqlDialect) dryRunPrefix() string { return "EXPLAIN " }

func (mysqlDialect) describeTable(ctx context.Context, c *sqlCore, table string) ([]ColumnInfo, error) {
	query := fmt.Sprint("SELECT column_name AS name, column_type AS type, is_nullable AS nullable ",
		"FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ",
		"ORDER BY ordinal_position")
	return describeFromInformationSchema(ctx, c, query, table)
}
