package schema

import (
	"errors"

	"github.com/syssam/dynrepo/schema/field"
)

// Default column names.
const (
	DefaultIDColumn        = "id"
	DefaultFeatureColumn   = "feature"
	DefaultCreatedAtColumn = "created_time"
	DefaultUpdatedAtColumn = "updated_time"
)

// Entity is implemented by entity types that declare their own table.
// The method is called on the zero value of the type.
type Entity interface {
	Table() *TableBuilder
}

// Field is the interface implemented by field builders.
type Field interface {
	Descriptor() *field.Descriptor
}

// Mixin is a reusable part of a table declaration. Apply runs before the
// mixin fields are appended.
type Mixin interface {
	Fields() []Field
	Apply(*TableBuilder)
}

// Descriptor is the table-level declaration of an entity.
type Descriptor struct {
	Name                      string
	IDColumn                  string
	FeatureColumn             string
	CreatedAtColumn           string
	UpdatedAtColumn           string
	LogicDelete               bool
	UpdateCreatedAtOnConflict bool
	Fields                    []*field.Descriptor
	Err                       error
}

// TableBuilder is the builder for table declarations.
type TableBuilder struct {
	desc *Descriptor
}

// Table returns a builder for the named table with default column names.
func Table(name string) *TableBuilder {
	b := &TableBuilder{desc: &Descriptor{
		Name:            name,
		IDColumn:        DefaultIDColumn,
		FeatureColumn:   DefaultFeatureColumn,
		CreatedAtColumn: DefaultCreatedAtColumn,
		UpdatedAtColumn: DefaultUpdatedAtColumn,
	}}
	if name == "" {
		b.desc.Err = errors.New("schema: empty table name")
	}
	return b
}

// IDColumn sets the primary key column name.
func (b *TableBuilder) IDColumn(name string) *TableBuilder {
	b.desc.IDColumn = b.column("id", name)
	return b
}

// FeatureColumn sets the name of the JSON side-channel column.
func (b *TableBuilder) FeatureColumn(name string) *TableBuilder {
	b.desc.FeatureColumn = b.column("feature", name)
	return b
}

// CreatedAtColumn sets the created-at timestamp column name.
func (b *TableBuilder) CreatedAtColumn(name string) *TableBuilder {
	b.desc.CreatedAtColumn = b.column("created-at", name)
	return b
}

// UpdatedAtColumn sets the updated-at timestamp column name.
func (b *TableBuilder) UpdatedAtColumn(name string) *TableBuilder {
	b.desc.UpdatedAtColumn = b.column("updated-at", name)
	return b
}

// LogicDelete enables soft deletion for the table.
func (b *TableBuilder) LogicDelete() *TableBuilder {
	b.desc.LogicDelete = true
	return b
}

// UpdateCreatedAtOnConflict includes the created-at column in the set of
// columns overwritten on upsert conflicts.
func (b *TableBuilder) UpdateCreatedAtOnConflict() *TableBuilder {
	b.desc.UpdateCreatedAtOnConflict = true
	return b
}

// Fields appends field declarations.
func (b *TableBuilder) Fields(fields ...Field) *TableBuilder {
	for _, f := range fields {
		if f == nil {
			b.desc.Err = errors.Join(b.desc.Err, errors.New("schema: nil field declaration"))
			continue
		}
		b.desc.Fields = append(b.desc.Fields, f.Descriptor())
	}
	return b
}

// Mixin applies mixins in order.
func (b *TableBuilder) Mixin(mixins ...Mixin) *TableBuilder {
	for _, m := range mixins {
		if m == nil {
			b.desc.Err = errors.Join(b.desc.Err, errors.New("schema: nil mixin"))
			continue
		}
		m.Apply(b)
		b.Fields(m.Fields()...)
	}
	return b
}

// Descriptor returns the table descriptor.
func (b *TableBuilder) Descriptor() *Descriptor {
	return b.desc
}

func (b *TableBuilder) column(what, name string) string {
	if name == "" {
		b.desc.Err = errors.Join(b.desc.Err, errors.New("schema: empty "+what+" column name"))
	}
	return name
}
