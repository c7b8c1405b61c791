package field

import (
	"errors"
	"go/token"

	"github.com/syssam/dynrepo/convert"
	"github.com/syssam/dynrepo/internal/naming"
)

// Kind describes where a declared field is stored.
type Kind uint8

// Field kinds.
const (
	KindColumn  Kind = iota + 1 // direct column
	KindFeature                 // packed into the feature column
	KindIgnore                  // not mapped
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindColumn:
		return "column"
	case KindFeature:
		return "feature"
	case KindIgnore:
		return "ignore"
	default:
		return "invalid"
	}
}

// Descriptor holds the declaration of a single struct field.
type Descriptor struct {
	Name           string      // Go struct field name
	Kind           Kind        // storage kind
	Column         string      // column name or side-channel key
	Query          bool        // column is queryable (KindColumn only)
	SkipOnConflict bool        // do not overwrite on unique-key conflict
	Converter      convert.Key // zero means convert.Default
	Err            error
}

// Builder is the builder for field declarations.
type Builder struct {
	desc *Descriptor
}

// Column declares a direct column for the Go field name. The column name
// defaults to the snake_case form of the field name.
func Column(name string) *Builder {
	b := &Builder{desc: &Descriptor{
		Name:  name,
		Kind:  KindColumn,
		Query: true,
	}}
	if validName(name) {
		b.desc.Column = naming.Snake(name)
	} else {
		b.desc.Err = errors.New("field: invalid Go field name " + quote(name))
	}
	return b
}

// Feature declares a field that is packed into the feature column. The
// logical key defaults to the Go field name.
func Feature(name string) *Builder {
	b := &Builder{desc: &Descriptor{
		Name:   name,
		Kind:   KindFeature,
		Column: name,
	}}
	if !validName(name) {
		b.desc.Err = errors.New("field: invalid Go field name " + quote(name))
	}
	return b
}

// Ignore excludes the Go field from mapping.
func Ignore(name string) *Builder {
	b := &Builder{desc: &Descriptor{Name: name, Kind: KindIgnore}}
	if !validName(name) {
		b.desc.Err = errors.New("field: invalid Go field name " + quote(name))
	}
	return b
}

// Named sets the column name, or the logical key for feature fields.
func (b *Builder) Named(name string) *Builder {
	if name == "" {
		b.desc.Err = errors.Join(b.desc.Err, errors.New("field: empty name for "+quote(b.desc.Name)))
		return b
	}
	b.desc.Column = name
	return b
}

// NoQuery marks a column as not queryable. Its value is packed into the
// feature column, keyed by the column name.
func (b *Builder) NoQuery() *Builder {
	b.desc.Query = false
	return b
}

// SkipOnConflict keeps the stored value of the column when an upsert hits a
// unique-key conflict.
func (b *Builder) SkipOnConflict() *Builder {
	b.desc.SkipOnConflict = true
	return b
}

// Converter sets the converter applied to the field value.
func (b *Builder) Converter(key convert.Key) *Builder {
	if key.IsZero() {
		b.desc.Err = errors.Join(b.desc.Err, errors.New("field: zero converter key for "+quote(b.desc.Name)))
		return b
	}
	b.desc.Converter = key
	return b
}

// Descriptor implements the schema.Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Direct reports whether the field is stored in its own column.
func (d *Descriptor) Direct() bool {
	return d.Kind == KindColumn && d.Query
}

func validName(name string) bool {
	return name != "" && token.IsIdentifier(name) && token.IsExported(name)
}

func quote(s string) string {
	return `"` + s + `"`
}
