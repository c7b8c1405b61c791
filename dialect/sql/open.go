package sql

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/syssam/dynrepo/dialect"
)

// OpenMySQL opens a MySQL driver for the given DSN. Time columns are
// always parsed into time.Time.
func OpenMySQL(dsn string) (*Driver, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: mysql connector: %w", err)
	}
	return OpenDB(dialect.MySQL, sql.OpenDB(connector)), nil
}

// OpenSQLite opens a SQLite driver for the given data source, for example
// "file:app.db?_pragma=foreign_keys(1)" or ":memory:".
func OpenSQLite(source string) (*Driver, error) {
	db, err := sql.Open("sqlite", source)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open sqlite: %w", err)
	}
	return OpenDB(dialect.SQLite, db), nil
}
