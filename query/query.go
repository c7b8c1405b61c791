package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Op is a predicate operator.
type Op string

// Predicate operators.
const (
	OpEQ      Op = "="
	OpNEQ     Op = "!="
	OpGT      Op = ">"
	OpGTE     Op = ">="
	OpLT      Op = "<"
	OpLTE     Op = "<="
	OpIn      Op = "IN"
	OpNotIn   Op = "NOT IN"
	OpLike    Op = "LIKE"
	OpIsNull  Op = "IS NULL"
	OpNotNull Op = "IS NOT NULL"
)

// Valid reports whether o is a known operator.
func (o Op) Valid() bool {
	switch o {
	case OpEQ, OpNEQ, OpGT, OpGTE, OpLT, OpLTE, OpIn, OpNotIn, OpLike, OpIsNull, OpNotNull:
		return true
	}
	return false
}

// Unary reports whether o takes no value.
func (o Op) Unary() bool {
	return o == OpIsNull || o == OpNotNull
}

// Multi reports whether o takes a collection value.
func (o Op) Multi() bool {
	return o == OpIn || o == OpNotIn
}

// String returns the SQL spelling of o.
func (o Op) String() string {
	return string(o)
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Predicate is a single filter term.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// String returns the predicate in SQL-like notation, for logging.
func (p Predicate) String() string {
	if p.Op.Unary() {
		return p.Field + " " + string(p.Op)
	}
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}

// Order is a single ordering term.
type Order struct {
	Field     string
	Direction Direction
}

// SelectKey names a column to select. Generated query types declare one
// constant per entity field.
type SelectKey string

// Builder is implemented by Condition and by generated query types that
// embed it.
type Builder interface {
	Cond() *Condition
}

// Condition accumulates the filter, order, pagination and select state of a
// single query. It is not safe for concurrent use.
type Condition struct {
	entity     reflect.Type
	predicates []Predicate
	orders     []Order
	limit      *int
	offset     *int
	selects    []string
	selected   map[string]struct{}
}

// New returns an empty condition bound to entity type t.
func New(t reflect.Type) *Condition {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return &Condition{entity: t}
}

// For returns an empty condition bound to entity type T.
func For[T any]() *Condition {
	return New(reflect.TypeFor[T]())
}

// Cond returns c. It makes *Condition a Builder.
func (c *Condition) Cond() *Condition {
	return c
}

// Entity returns the bound entity type.
func (c *Condition) Entity() reflect.Type {
	return c.entity
}

// AddCondition appends a predicate. Predicates keep insertion order and
// duplicates are kept.
func (c *Condition) AddCondition(field string, op Op, value any) *Condition {
	c.predicates = append(c.predicates, Predicate{Field: field, Op: op, Value: value})
	return c
}

// Eq appends field = value.
func (c *Condition) Eq(field string, value any) *Condition {
	return c.AddCondition(field, OpEQ, value)
}

// Ne appends field != value.
func (c *Condition) Ne(field string, value any) *Condition {
	return c.AddCondition(field, OpNEQ, value)
}

// Gt appends field > value.
func (c *Condition) Gt(field string, value any) *Condition {
	return c.AddCondition(field, OpGT, value)
}

// Ge appends field >= value.
func (c *Condition) Ge(field string, value any) *Condition {
	return c.AddCondition(field, OpGTE, value)
}

// Lt appends field < value.
func (c *Condition) Lt(field string, value any) *Condition {
	return c.AddCondition(field, OpLT, value)
}

// Le appends field <= value.
func (c *Condition) Le(field string, value any) *Condition {
	return c.AddCondition(field, OpLTE, value)
}

// In appends field IN values. values is a slice or array.
func (c *Condition) In(field string, values any) *Condition {
	return c.AddCondition(field, OpIn, values)
}

// NotIn appends field NOT IN values. values is a slice or array.
func (c *Condition) NotIn(field string, values any) *Condition {
	return c.AddCondition(field, OpNotIn, values)
}

// Like appends field LIKE %value%.
func (c *Condition) Like(field string, value any) *Condition {
	return c.AddCondition(field, OpLike, fmt.Sprintf("%%%v%%", value))
}

// LikeLeft appends field LIKE %value, matching values that end with value.
func (c *Condition) LikeLeft(field string, value any) *Condition {
	return c.AddCondition(field, OpLike, fmt.Sprintf("%%%v", value))
}

// LikeRight appends field LIKE value%, matching values that start with value.
func (c *Condition) LikeRight(field string, value any) *Condition {
	return c.AddCondition(field, OpLike, fmt.Sprintf("%v%%", value))
}

// IsNull appends field IS NULL.
func (c *Condition) IsNull(field string) *Condition {
	return c.AddCondition(field, OpIsNull, nil)
}

// IsNotNull appends field IS NOT NULL.
func (c *Condition) IsNotNull(field string) *Condition {
	return c.AddCondition(field, OpNotNull, nil)
}

// AddOrder appends an ordering term.
func (c *Condition) AddOrder(field string, dir Direction) *Condition {
	c.orders = append(c.orders, Order{Field: field, Direction: dir})
	return c
}

// Asc orders by field ascending.
func (c *Condition) Asc(field string) *Condition {
	return c.AddOrder(field, Ascending)
}

// Desc orders by field descending.
func (c *Condition) Desc(field string) *Condition {
	return c.AddOrder(field, Descending)
}

// SetPageInfo sets 1-indexed pagination: offset (page-1)*size and limit
// size. A page below 1 yields a negative offset; callers must not pass one.
func (c *Condition) SetPageInfo(page, size int) *Condition {
	return c.SetOffset((page - 1) * size).SetLimit(size)
}

// SetLimit sets the maximum number of rows.
func (c *Condition) SetLimit(n int) *Condition {
	c.limit = &n
	return c
}

// SetOffset sets the number of rows to skip.
func (c *Condition) SetOffset(n int) *Condition {
	c.offset = &n
	return c
}

// Select adds columns to select. Duplicates are dropped and first-seen
// order is kept. Without any call all columns are selected.
func (c *Condition) Select(keys ...SelectKey) *Condition {
	for _, k := range keys {
		if c.selected == nil {
			c.selected = make(map[string]struct{})
		}
		if _, ok := c.selected[string(k)]; ok {
			continue
		}
		c.selected[string(k)] = struct{}{}
		c.selects = append(c.selects, string(k))
	}
	return c
}

// Predicates returns the predicates in insertion order.
func (c *Condition) Predicates() []Predicate {
	return c.predicates
}

// Orders returns the ordering terms in insertion order.
func (c *Condition) Orders() []Order {
	return c.orders
}

// Limit returns the row limit, if set.
func (c *Condition) Limit() (int, bool) {
	if c.limit == nil {
		return 0, false
	}
	return *c.limit, true
}

// Offset returns the row offset, if set.
func (c *Condition) Offset() (int, bool) {
	if c.offset == nil {
		return 0, false
	}
	return *c.offset, true
}

// SelectColumns returns the selected columns in first-seen order. It is
// empty when all columns are selected.
func (c *Condition) SelectColumns() []string {
	return c.selects
}

// SelectAll reports whether all columns are selected.
func (c *Condition) SelectAll() bool {
	return len(c.selects) == 0
}

// String returns a readable form of the condition, for logging.
func (c *Condition) String() string {
	var b strings.Builder
	b.WriteString("select ")
	if c.SelectAll() {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(c.selects, ", "))
	}
	for i, p := range c.predicates {
		if i == 0 {
			b.WriteString(" where ")
		} else {
			b.WriteString(" and ")
		}
		b.WriteString(p.String())
	}
	for i, o := range c.orders {
		if i == 0 {
			b.WriteString(" order by ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(o.Field + " " + string(o.Direction))
	}
	if n, ok := c.Limit(); ok {
		fmt.Fprintf(&b, " limit %d", n)
	}
	if n, ok := c.Offset(); ok {
		fmt.Fprintf(&b, " offset %d", n)
	}
	return b.String()
}
