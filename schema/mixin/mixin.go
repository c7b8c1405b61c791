// Package mixin provides reusable parts of table declarations.
//
// A mixin bundles field declarations with the table settings they need,
// so entities that share timestamp or soft-delete conventions declare them
// once:
//
//	func (Order) Table() *schema.TableBuilder {
//	    return schema.Table("orders").
//	        Mixin(mixin.Time{Created: "GmtCreate", Updated: "GmtModified"}, mixin.SoftDelete{}).
//	        Fields(field.Column("ID"), field.Column("Amount"))
//	}
//
// To create a custom mixin, embed Schema and override what you need:
//
//	type Audit struct {
//	    mixin.Schema
//	}
//
//	func (Audit) Fields() []schema.Field {
//	    return []schema.Field{field.Column("CreatedBy").NoQuery()}
//	}
package mixin

import (
	"github.com/syssam/dynrepo/internal/naming"
	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
)

// Default Go field names of the timestamp mixins.
const (
	DefaultCreatedField = "CreatedTime"
	DefaultUpdatedField = "UpdatedTime"
)

// Schema is the default implementation of schema.Mixin. It should be
// embedded in custom mixins.
type Schema struct{}

// Fields returns the fields of the mixin.
func (Schema) Fields() []schema.Field { return nil }

// Apply adjusts the table settings.
func (Schema) Apply(*schema.TableBuilder) {}

var _ schema.Mixin = (*Schema)(nil)

// Time declares the created-at and updated-at fields. The columns are the
// snake_case forms of the Go field names and become the table's
// timestamp columns.
type Time struct {
	Created string // Go field name, DefaultCreatedField when empty
	Updated string // Go field name, DefaultUpdatedField when empty
}

// Fields returns both timestamp fields.
func (m Time) Fields() []schema.Field {
	return append(CreateTime{Field: m.Created}.Fields(), UpdateTime{Field: m.Updated}.Fields()...)
}

// Apply sets both timestamp columns.
func (m Time) Apply(b *schema.TableBuilder) {
	CreateTime{Field: m.Created}.Apply(b)
	UpdateTime{Field: m.Updated}.Apply(b)
}

// CreateTime declares only the created-at field.
type CreateTime struct {
	Field string
}

// Fields returns the created-at field.
func (m CreateTime) Fields() []schema.Field {
	return []schema.Field{field.Column(or(m.Field, DefaultCreatedField))}
}

// Apply sets the created-at column.
func (m CreateTime) Apply(b *schema.TableBuilder) {
	b.CreatedAtColumn(naming.Snake(or(m.Field, DefaultCreatedField)))
}

// UpdateTime declares only the updated-at field.
type UpdateTime struct {
	Field string
}

// Fields returns the updated-at field.
func (m UpdateTime) Fields() []schema.Field {
	return []schema.Field{field.Column(or(m.Field, DefaultUpdatedField))}
}

// Apply sets the updated-at column.
func (m UpdateTime) Apply(b *schema.TableBuilder) {
	b.UpdatedAtColumn(naming.Snake(or(m.Field, DefaultUpdatedField)))
}

// SoftDelete enables logic deletion. Deleted rows stay in the table and
// are hidden from queries.
type SoftDelete struct {
	Schema
}

// Apply enables logic deletion.
func (SoftDelete) Apply(b *schema.TableBuilder) {
	b.LogicDelete()
}

// TimeSoftDelete combines Time and SoftDelete.
type TimeSoftDelete struct {
	Time
}

// Apply sets the timestamp columns and enables logic deletion.
func (m TimeSoftDelete) Apply(b *schema.TableBuilder) {
	m.Time.Apply(b)
	SoftDelete{}.Apply(b)
}

// NoQuery wraps a mixin and marks its column fields NoQuery, so their
// values are packed into the feature column.
func NoQuery(m schema.Mixin) schema.Mixin {
	return noQuery{Mixin: m}
}

type noQuery struct {
	schema.Mixin
}

func (m noQuery) Fields() []schema.Field {
	fields := m.Mixin.Fields()
	for _, f := range fields {
		if f == nil {
			continue
		}
		if d := f.Descriptor(); d.Kind == field.KindColumn {
			d.Query = false
		}
	}
	return fields
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
