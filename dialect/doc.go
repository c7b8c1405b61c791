// Package dialect defines the storage contract consumed by the repository
// facade, and the driver interfaces its SQL implementation runs on.
//
// # Backend
//
// A Backend receives a table name, rows keyed by column name and a
// *query.Condition, and returns rows in the same shape or affected-row
// counts. It never sees entity types:
//
//	type Backend interface {
//	    Insert(ctx context.Context, table string, row dynrepo.Row) (Result, error)
//	    Upsert(ctx context.Context, table string, row dynrepo.Row, update []string) (Result, error)
//	    BatchInsert(ctx context.Context, table string, rows []dynrepo.Row) (Result, error)
//	    BatchUpsert(ctx context.Context, table string, rows []dynrepo.Row, update []string) (Result, error)
//	    Update(ctx context.Context, table string, row dynrepo.Row, cond *query.Condition, logicDelete bool) (int64, error)
//	    Delete(ctx context.Context, table string, cond *query.Condition) (int64, error)
//	    LogicDelete(ctx context.Context, table string, cond *query.Condition) (int64, error)
//	    Find(ctx context.Context, table string, cond *query.Condition, logicDelete bool) ([]dynrepo.Row, error)
//	    Count(ctx context.Context, table string, cond *query.Condition, logicDelete bool) (int64, error)
//	}
//
// The logicDelete flag tells the backend that the table uses soft deletion,
// so reads and updates must skip rows marked deleted.
//
// # Drivers
//
// The SQL backend in dialect/sql executes statements through a Driver:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Dialects
//
//	dialect.MySQL  = "mysql"
//	dialect.SQLite = "sqlite"
package dialect
