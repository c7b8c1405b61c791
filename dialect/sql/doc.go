// Package sql implements dialect.Backend for MySQL and SQLite through
// database/sql.
//
// # Statement Builder
//
// Builder renders statements with quoted, validated identifiers and
// positional arguments:
//
//	b := sql.Dialect(dialect.MySQL)
//	b.WriteString("SELECT * FROM ").Ident("user").Where(cond, "deleted")
//	stmt, args, err := b.Query()
//	// SELECT * FROM `user` WHERE `name` = ? AND `deleted` = ?
//
// Predicates of a query.Condition render in insertion order joined by AND.
// IN and NOT IN expand their collection value into one placeholder per
// element.
//
// # Backend
//
// Backend turns rows and conditions into INSERT, UPDATE, DELETE and SELECT
// statements:
//
//	drv, err := sql.OpenSQLite("file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	client := repo.New(sql.NewBackend(drv))
//
// Upserts use ON DUPLICATE KEY UPDATE on MySQL and ON CONFLICT DO UPDATE on
// SQLite. Tables with soft deletion carry a deleted flag column (0 live,
// 1 deleted) and an optional deletion timestamp column.
//
// # Errors
//
// Unique, foreign key and check violations reported by either driver are
// returned as *dynrepo.ConstraintError.
//
// # Observability
//
// Backend logs every statement at debug level through zap and counts
// statements, errors and elapsed time (Stats). WithSlowThreshold also logs
// slow statements at warn level.
package sql
