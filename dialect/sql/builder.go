package sql

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/syssam/dynrepo/dialect"
	"github.com/syssam/dynrepo/query"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores,
// dots for schema.name).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// Builder is a statement builder with identifier quoting and positional
// arguments. Errors are collected and reported by Query.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
	errs    []error
}

// Dialect returns a new Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// Quote quotes an identifier for the builder dialect.
func (b *Builder) Quote(ident string) string {
	if b.dialect == dialect.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

// Ident writes a validated, quoted identifier. Dotted identifiers are
// quoted part by part.
func (b *Builder) Ident(s string) *Builder {
	if !isValidIdentifier(s) {
		b.AddError(fmt.Errorf("dialect/sql: invalid identifier %q", s))
		return b
	}
	for i, part := range strings.Split(s, ".") {
		if i > 0 {
			b.sb.WriteByte('.')
		}
		b.sb.WriteString(b.Quote(part))
	}
	return b
}

// IdentComma writes identifiers separated by commas.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, s := range idents {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s)
	}
	return b
}

// WriteString writes raw SQL.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes a single raw byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad writes a single space.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Comma writes ", ".
func (b *Builder) Comma() *Builder {
	return b.WriteString(", ")
}

// Arg writes a placeholder and records its argument.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	return b.WriteByte('?')
}

// Args writes comma separated placeholders.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.Comma()
		}
		b.Arg(a[i])
	}
	return b
}

// Wrap writes "(" then the output of f then ")".
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	return b.WriteByte(')')
}

// AddError records a build error.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the build errors, joined.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// String returns the statement text.
func (b *Builder) String() string {
	return b.sb.String()
}

// Query returns the statement and its arguments.
func (b *Builder) Query() (string, []any, error) {
	if err := b.Err(); err != nil {
		return "", nil, err
	}
	return b.sb.String(), b.args, nil
}

// Where writes the WHERE clause of cond: predicates in insertion order
// joined by AND, followed by the live-row filter when the table uses soft
// deletion. Nothing is written when there is nothing to filter.
func (b *Builder) Where(cond *query.Condition, deleted string) *Builder {
	var preds []query.Predicate
	if cond != nil {
		preds = cond.Predicates()
	}
	if len(preds) == 0 && deleted == "" {
		return b
	}
	b.WriteString(" WHERE ")
	for i, p := range preds {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.Predicate(p)
	}
	if deleted != "" {
		if len(preds) > 0 {
			b.WriteString(" AND ")
		}
		b.Ident(deleted).WriteString(" = ").Arg(0)
	}
	return b
}

// Predicate writes a single predicate. IN and NOT IN expand their
// collection value to one placeholder per element; an empty collection
// matches nothing for IN and everything for NOT IN.
func (b *Builder) Predicate(p query.Predicate) *Builder {
	if !p.Op.Valid() {
		return b.AddError(fmt.Errorf("dialect/sql: invalid operator %q", p.Op))
	}
	switch {
	case p.Op.Unary():
		return b.Ident(p.Field).Pad().WriteString(string(p.Op))
	case p.Op.Multi():
		values := expand(p.Value)
		if len(values) == 0 {
			if p.Op == query.OpIn {
				return b.WriteString("1 = 0")
			}
			return b.WriteString("1 = 1")
		}
		b.Ident(p.Field).Pad().WriteString(string(p.Op)).Pad()
		return b.Wrap(func(b *Builder) { b.Args(values...) })
	default:
		return b.Ident(p.Field).Pad().WriteString(string(p.Op)).Pad().Arg(p.Value)
	}
}

// OrderBy writes the ORDER BY clause of cond.
func (b *Builder) OrderBy(cond *query.Condition) *Builder {
	if cond == nil || len(cond.Orders()) == 0 {
		return b
	}
	b.WriteString(" ORDER BY ")
	for i, o := range cond.Orders() {
		if i > 0 {
			b.Comma()
		}
		b.Ident(o.Field)
		switch o.Direction {
		case query.Ascending:
			b.WriteString(" ASC")
		case query.Descending:
			b.WriteString(" DESC")
		default:
			b.AddError(fmt.Errorf("dialect/sql: invalid order direction %q", o.Direction))
		}
	}
	return b
}

// Paginate writes the LIMIT and OFFSET clauses of cond. An offset without a
// limit gets the dialect's "no limit" value, as both dialects require a
// LIMIT before OFFSET.
func (b *Builder) Paginate(cond *query.Condition) *Builder {
	if cond == nil {
		return b
	}
	limit, hasLimit := cond.Limit()
	offset, hasOffset := cond.Offset()
	switch {
	case hasLimit:
		b.WriteString(" LIMIT ").Arg(limit)
	case hasOffset && b.dialect == dialect.MySQL:
		b.WriteString(" LIMIT 18446744073709551615")
	case hasOffset:
		b.WriteString(" LIMIT -1")
	}
	if hasOffset {
		b.WriteString(" OFFSET ").Arg(offset)
	}
	return b
}

// expand flattens a slice or array value into its elements. Byte slices
// and scalars are single values.
func expand(v any) []any {
	if v == nil {
		return nil
	}
	if vs, ok := v.([]any); ok {
		return vs
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return []any{v}
		}
	case reflect.Array:
	default:
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
