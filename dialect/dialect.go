package dialect

import (
	"context"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/query"
)

// Dialect names.
const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for a backend
// connection.
type Driver interface {
	ExecQuerier
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect of the driver.
	Dialect() string
}

// Result reports the outcome of an insert.
type Result struct {
	// Affected is the number of affected rows as reported by the database.
	Affected int64
	// IDs holds the generated id of each inserted row, in input order.
	// It is empty when the database did not generate ids.
	IDs []any
}

// Backend executes row-level operations against a table.
type Backend interface {
	// Insert inserts one row.
	Insert(ctx context.Context, table string, row dynrepo.Row) (Result, error)
	// Upsert inserts one row, overwriting the update columns on a
	// unique-key conflict.
	Upsert(ctx context.Context, table string, row dynrepo.Row, update []string) (Result, error)
	// BatchInsert inserts rows in one statement.
	BatchInsert(ctx context.Context, table string, rows []dynrepo.Row) (Result, error)
	// BatchUpsert is the batch form of Upsert.
	BatchUpsert(ctx context.Context, table string, rows []dynrepo.Row, update []string) (Result, error)
	// Update sets the columns of row on the rows matching cond.
	Update(ctx context.Context, table string, row dynrepo.Row, cond *query.Condition, logicDelete bool) (int64, error)
	// Delete removes the rows matching cond.
	Delete(ctx context.Context, table string, cond *query.Condition) (int64, error)
	// LogicDelete marks the rows matching cond as deleted.
	LogicDelete(ctx context.Context, table string, cond *query.Condition) (int64, error)
	// Find returns the rows matching cond.
	Find(ctx context.Context, table string, cond *query.Condition, logicDelete bool) ([]dynrepo.Row, error)
	// Count returns the number of rows matching cond.
	Count(ctx context.Context, table string, cond *query.Condition, logicDelete bool) (int64, error)
}
