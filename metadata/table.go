package metadata

import (
	"reflect"
	"slices"
)

// Table is the immutable metadata of an entity type.
type Table struct {
	Type            reflect.Type // entity struct type
	TableName       string
	IDColumn        string
	FeatureColumn   string
	CreatedAtColumn string
	UpdatedAtColumn string
	LogicDelete     bool

	// UpdateCreatedAtOnConflict reports whether an upsert overwrites the
	// created-at column.
	UpdateCreatedAtOnConflict bool

	// Columns holds the directly mapped fields by column name.
	Columns map[string]*Binding
	// SideChannel holds the fields packed into the feature column by
	// logical key.
	SideChannel map[string]*Binding
	// ID is the binding of the id column, or nil if it is not mapped.
	ID *Binding
	// DuplicateUpdateColumns lists the columns overwritten when an upsert
	// hits a unique-key conflict, in declaration order.
	DuplicateUpdateColumns []string

	columns []*Binding
	side    []*Binding
}

// Name returns the entity type name.
func (t *Table) Name() string {
	return t.Type.Name()
}

// ColumnBindings returns the direct column bindings in struct field order.
func (t *Table) ColumnBindings() []*Binding {
	return t.columns
}

// SideChannelBindings returns the side-channel bindings in struct field order.
func (t *Table) SideChannelBindings() []*Binding {
	return t.side
}

// Bindings returns all bindings, direct columns first.
func (t *Table) Bindings() []*Binding {
	return slices.Concat(t.columns, t.side)
}

// Field returns the binding of the Go field name.
func (t *Table) Field(name string) (*Binding, bool) {
	for _, b := range t.Bindings() {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// IsDuplicateUpdate reports whether column is overwritten on upsert
// conflicts.
func (t *Table) IsDuplicateUpdate(column string) bool {
	return slices.Contains(t.DuplicateUpdateColumns, column)
}

// New returns a pointer to a new zero entity.
func (t *Table) New() reflect.Value {
	return reflect.New(t.Type)
}
