package sql

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/dialect"
	"github.com/syssam/dynrepo/query"
)

// Default soft-deletion columns.
const (
	DefaultDeletedColumn   = "deleted"
	DefaultDeletedAtColumn = "deleted_time"
)

// Backend implements dialect.Backend on top of a SQL driver.
type Backend struct {
	drv       dialect.Driver
	dialect   string
	deleted   string
	deletedAt string
	now       func() time.Time
	log       *zap.Logger
	slow      time.Duration
	stats     stats
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithDeletedColumn sets the soft-deletion flag column. Live rows hold 0,
// deleted rows hold 1.
func WithDeletedColumn(name string) BackendOption {
	return func(b *Backend) { b.deleted = name }
}

// WithDeletedAtColumn sets the column stamped on soft deletion. An empty
// name disables the stamp.
func WithDeletedAtColumn(name string) BackendOption {
	return func(b *Backend) { b.deletedAt = name }
}

// WithBackendLogger sets the logger used for statement debugging.
func WithBackendLogger(l *zap.Logger) BackendOption {
	return func(b *Backend) { b.log = l }
}

// WithBackendClock sets the clock used for the deletion stamp.
func WithBackendClock(now func() time.Time) BackendOption {
	return func(b *Backend) { b.now = now }
}

// NewBackend returns a Backend executing statements on drv.
func NewBackend(drv dialect.Driver, opts ...BackendOption) *Backend {
	b := &Backend{
		drv:       drv,
		dialect:   drv.Dialect(),
		deleted:   DefaultDeletedColumn,
		deletedAt: DefaultDeletedAtColumn,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = zap.L()
	}
	return b
}

var _ dialect.Backend = (*Backend)(nil)

// Insert implements dialect.Backend.
func (b *Backend) Insert(ctx context.Context, table string, row dynrepo.Row) (dialect.Result, error) {
	return b.insert(ctx, table, []dynrepo.Row{row}, nil, false)
}

// Upsert implements dialect.Backend.
func (b *Backend) Upsert(ctx context.Context, table string, row dynrepo.Row, update []string) (dialect.Result, error) {
	return b.insert(ctx, table, []dynrepo.Row{row}, update, true)
}

// BatchInsert implements dialect.Backend.
func (b *Backend) BatchInsert(ctx context.Context, table string, rows []dynrepo.Row) (dialect.Result, error) {
	return b.insert(ctx, table, rows, nil, false)
}

// BatchUpsert implements dialect.Backend. Generated ids are not reported
// since updated rows generate none.
func (b *Backend) BatchUpsert(ctx context.Context, table string, rows []dynrepo.Row, update []string) (dialect.Result, error) {
	res, err := b.insert(ctx, table, rows, update, true)
	res.IDs = nil
	return res, err
}

func (b *Backend) insert(ctx context.Context, table string, rows []dynrepo.Row, update []string, upsert bool) (dialect.Result, error) {
	if len(rows) == 0 {
		return dialect.Result{}, nil
	}
	stmt, args, err := b.insertStatement(table, rows, update, upsert)
	if err != nil {
		return dialect.Result{}, err
	}
	var res Result
	if err := b.exec(ctx, stmt, args, &res); err != nil {
		return dialect.Result{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dialect.Result{}, fmt.Errorf("dialect/sql: rows affected: %w", err)
	}
	out := dialect.Result{Affected: affected}
	// MySQL reports 2 for a single upserted row that was updated.
	if upsert && len(rows) == 1 && b.dialect == dialect.MySQL && affected != 1 {
		return out, nil
	}
	id, err := res.LastInsertId()
	if err != nil || id <= 0 {
		return out, nil
	}
	n := int64(len(rows))
	out.IDs = make([]any, n)
	for i := range n {
		// MySQL reports the first id of a multi-row insert, SQLite the last.
		if b.dialect == dialect.MySQL {
			out.IDs[i] = id + i
		} else {
			out.IDs[i] = id - n + 1 + i
		}
	}
	return out, nil
}

// insertStatement renders INSERT for the union of the row columns. Cells
// missing from a row are written as NULL.
func (b *Backend) insertStatement(table string, rows []dynrepo.Row, update []string, upsert bool) (string, []any, error) {
	set := make(map[string]struct{})
	for _, r := range rows {
		for c := range r {
			set[c] = struct{}{}
		}
	}
	columns := slices.Sorted(maps.Keys(set))
	sb := Dialect(b.dialect)
	sb.WriteString("INSERT INTO ").Ident(table)
	if len(columns) == 0 {
		switch {
		case b.dialect == dialect.MySQL:
			sb.WriteString(" () VALUES ")
			for i := range rows {
				if i > 0 {
					sb.Comma()
				}
				sb.WriteString("()")
			}
		case len(rows) == 1:
			sb.WriteString(" DEFAULT VALUES")
		default:
			return "", nil, errors.New("dialect/sql: cannot batch insert rows without columns")
		}
		return sb.Query()
	}
	sb.Pad().Wrap(func(sb *Builder) { sb.IdentComma(columns...) })
	sb.WriteString(" VALUES ")
	for i, r := range rows {
		if i > 0 {
			sb.Comma()
		}
		sb.Wrap(func(sb *Builder) {
			for j, c := range columns {
				if j > 0 {
					sb.Comma()
				}
				if v, ok := r[c]; ok {
					sb.Arg(v)
				} else {
					sb.WriteString("NULL")
				}
			}
		})
	}
	if upsert {
		var cols []string
		for _, c := range update {
			if _, ok := set[c]; ok && !slices.Contains(cols, c) {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			b.conflict(sb, cols)
		}
	}
	return sb.Query()
}

func (b *Backend) conflict(sb *Builder, cols []string) {
	if b.dialect == dialect.MySQL {
		sb.WriteString(" ON DUPLICATE KEY UPDATE ")
		for i, c := range cols {
			if i > 0 {
				sb.Comma()
			}
			sb.Ident(c).WriteString(" = VALUES(").Ident(c).WriteByte(')')
		}
		return
	}
	sb.WriteString(" ON CONFLICT DO UPDATE SET ")
	for i, c := range cols {
		if i > 0 {
			sb.Comma()
		}
		sb.Ident(c).WriteString(" = excluded.").Ident(c)
	}
}

// Update implements dialect.Backend. Columns are set in name order.
func (b *Backend) Update(ctx context.Context, table string, row dynrepo.Row, cond *query.Condition, logicDelete bool) (int64, error) {
	if len(row) == 0 {
		return 0, nil
	}
	sb := Dialect(b.dialect)
	sb.WriteString("UPDATE ").Ident(table).WriteString(" SET ")
	for i, c := range slices.Sorted(maps.Keys(row)) {
		if i > 0 {
			sb.Comma()
		}
		sb.Ident(c).WriteString(" = ").Arg(row[c])
	}
	sb.Where(cond, b.live(logicDelete))
	return b.affect(ctx, sb)
}

// Delete implements dialect.Backend.
func (b *Backend) Delete(ctx context.Context, table string, cond *query.Condition) (int64, error) {
	sb := Dialect(b.dialect)
	sb.WriteString("DELETE FROM ").Ident(table).Where(cond, "")
	return b.affect(ctx, sb)
}

// LogicDelete implements dialect.Backend. Rows already deleted are left as
// they are.
func (b *Backend) LogicDelete(ctx context.Context, table string, cond *query.Condition) (int64, error) {
	sb := Dialect(b.dialect)
	sb.WriteString("UPDATE ").Ident(table).WriteString(" SET ").Ident(b.deleted).WriteString(" = ").Arg(1)
	if b.deletedAt != "" {
		sb.Comma().Ident(b.deletedAt).WriteString(" = ").Arg(b.now())
	}
	sb.Where(cond, b.deleted)
	return b.affect(ctx, sb)
}

// Find implements dialect.Backend.
func (b *Backend) Find(ctx context.Context, table string, cond *query.Condition, logicDelete bool) ([]dynrepo.Row, error) {
	sb := Dialect(b.dialect)
	sb.WriteString("SELECT ")
	if cond == nil || cond.SelectAll() {
		sb.WriteByte('*')
	} else {
		sb.IdentComma(cond.SelectColumns()...)
	}
	sb.WriteString(" FROM ").Ident(table).
		Where(cond, b.live(logicDelete)).
		OrderBy(cond).
		Paginate(cond)
	stmt, args, err := sb.Query()
	if err != nil {
		return nil, err
	}
	rows := &Rows{}
	if err := b.query(ctx, stmt, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	return ScanRows(rows)
}

// Count implements dialect.Backend.
func (b *Backend) Count(ctx context.Context, table string, cond *query.Condition, logicDelete bool) (int64, error) {
	sb := Dialect(b.dialect)
	sb.WriteString("SELECT COUNT(*) FROM ").Ident(table).Where(cond, b.live(logicDelete))
	stmt, args, err := sb.Query()
	if err != nil {
		return 0, err
	}
	rows := &Rows{}
	if err := b.query(ctx, stmt, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, errors.New("dialect/sql: count returned no rows")
	}
	if err := rows.Scan(&n); err != nil {
		return 0, fmt.Errorf("dialect/sql: scan count: %w", err)
	}
	return n, rows.Err()
}

// ScanRows reads all rows into column keyed maps.
func ScanRows(rows ColumnScanner) ([]dynrepo.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: columns: %w", err)
	}
	out := []dynrepo.Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dialect/sql: scan: %w", err)
		}
		row := make(dynrepo.Row, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) live(logicDelete bool) string {
	if logicDelete {
		return b.deleted
	}
	return ""
}

func (b *Backend) affect(ctx context.Context, sb *Builder) (int64, error) {
	stmt, args, err := sb.Query()
	if err != nil {
		return 0, err
	}
	var res Result
	if err := b.exec(ctx, stmt, args, &res); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("dialect/sql: rows affected: %w", err)
	}
	return n, nil
}

func (b *Backend) exec(ctx context.Context, stmt string, args []any, res *Result) error {
	if ce := b.log.Check(zap.DebugLevel, "dialect/sql: exec"); ce != nil {
		ce.Write(zap.String("query", stmt), zap.Any("args", args))
	}
	start := time.Now()
	err := b.drv.Exec(ctx, stmt, args, res)
	b.observe("exec", stmt, args, start, err)
	return translate(err)
}

func (b *Backend) query(ctx context.Context, stmt string, args []any, rows *Rows) error {
	if ce := b.log.Check(zap.DebugLevel, "dialect/sql: query"); ce != nil {
		ce.Write(zap.String("query", stmt), zap.Any("args", args))
	}
	start := time.Now()
	err := b.drv.Query(ctx, stmt, args, rows)
	b.observe("query", stmt, args, start, err)
	return err
}
