package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/convert"
	"github.com/syssam/dynrepo/internal/memo"
	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
)

var (
	tables       memo.Cache[reflect.Type, *Table]
	declarations sync.Map // reflect.Type -> *schema.TableBuilder
)

var entityType = reflect.TypeFor[schema.Entity]()

// Register supplies the table declaration of entity type t, which takes
// precedence over a schema.Entity implementation. It fails once the
// metadata of t has been built.
func Register(t reflect.Type, b *schema.TableBuilder) error {
	t = structType(t)
	if b == nil {
		return dynrepo.NewConfigError(typeName(t), "", "nil table declaration")
	}
	if _, ok := tables.Load(t); ok {
		return dynrepo.NewConfigError(typeName(t), "", "metadata already built")
	}
	declarations.Store(t, b)
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(t reflect.Type, b *schema.TableBuilder) {
	if err := Register(t, b); err != nil {
		panic(err)
	}
}

// Get returns the metadata of entity type t (a struct type or a pointer to
// one), building and caching it on first use. Declaration errors are
// returned as *dynrepo.ConfigError and never cached.
func Get(t reflect.Type) (*Table, error) {
	if t == nil {
		return nil, dynrepo.NewConfigError("<nil>", "", "nil entity type")
	}
	return tables.Get(structType(t), build)
}

// For returns the metadata of entity type T.
func For[T any]() (*Table, error) {
	return Get(reflect.TypeFor[T]())
}

// MustGet is like Get but panics on error.
func MustGet(t reflect.Type) *Table {
	tbl, err := Get(t)
	if err != nil {
		panic(err)
	}
	return tbl
}

// Builds reports how many metadata builds have run. Concurrent first use of
// one type counts once.
func Builds() int64 {
	return tables.Builds()
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// declaration returns the table declaration of t from the registry or from
// the zero value of t.
func declaration(t reflect.Type) (d *schema.Descriptor, err error) {
	name := typeName(t)
	var b *schema.TableBuilder
	if v, ok := declarations.Load(t); ok {
		b = v.(*schema.TableBuilder)
	} else {
		defer func() {
			if r := recover(); r != nil {
				d, err = nil, dynrepo.NewConfigError(name, "", fmt.Sprintf("table declaration panicked: %v", r))
			}
		}()
		switch {
		case t.Implements(entityType):
			b = reflect.Zero(t).Interface().(schema.Entity).Table()
		case reflect.PointerTo(t).Implements(entityType):
			b = reflect.New(t).Interface().(schema.Entity).Table()
		default:
			return nil, dynrepo.NewConfigError(name, "", "missing table declaration")
		}
	}
	if b == nil {
		return nil, dynrepo.NewConfigError(name, "", "nil table declaration")
	}
	d = b.Descriptor()
	if d.Err != nil {
		return nil, dynrepo.NewConfigError(name, "", d.Err.Error())
	}
	return d, nil
}

func build(t reflect.Type) (*Table, error) {
	name := typeName(t)
	if t.Kind() != reflect.Struct {
		return nil, dynrepo.NewConfigError(name, "", "entity must be a struct, got "+t.Kind().String())
	}
	d, err := declaration(t)
	if err != nil {
		return nil, err
	}
	decls := make(map[string]*field.Descriptor, len(d.Fields))
	for _, fd := range d.Fields {
		if fd.Err != nil {
			return nil, dynrepo.NewConfigError(name, fd.Name, fd.Err.Error())
		}
		if _, ok := decls[fd.Name]; ok {
			return nil, dynrepo.NewConfigError(name, fd.Name, "field declared more than once")
		}
		decls[fd.Name] = fd
	}
	fields := structFields(t, decls)
	for _, fd := range d.Fields {
		if _, ok := fields.byName[fd.Name]; !ok {
			return nil, dynrepo.NewConfigError(name, fd.Name, "unknown field")
		}
	}
	tbl := &Table{
		Type:                      t,
		TableName:                 d.Name,
		IDColumn:                  d.IDColumn,
		FeatureColumn:             d.FeatureColumn,
		CreatedAtColumn:           d.CreatedAtColumn,
		UpdatedAtColumn:           d.UpdatedAtColumn,
		LogicDelete:               d.LogicDelete,
		UpdateCreatedAtOnConflict: d.UpdateCreatedAtOnConflict,
		Columns:                   make(map[string]*Binding),
		SideChannel:               make(map[string]*Binding),
	}
	for _, f := range fields.list {
		fd := decls[f.Name]
		switch {
		case fd != nil && fd.Kind == field.KindIgnore:
			continue
		case fd != nil && fd.Direct():
			if err := tbl.addColumn(newBinding(t, f, fd.Column, fd.Converter), fd.SkipOnConflict); err != nil {
				return nil, err
			}
		case fd != nil:
			if err := tbl.addSide(newBinding(t, f, fd.Column, fd.Converter)); err != nil {
				return nil, err
			}
		default:
			if err := tbl.addSide(newBinding(t, f, f.Name, convert.Key{})); err != nil {
				return nil, err
			}
		}
	}
	return tbl, nil
}

func (t *Table) addColumn(b *Binding, skip bool) error {
	if _, ok := t.Columns[b.Column]; ok {
		return dynrepo.NewConfigError(typeName(t.Type), b.Name, "duplicate column "+b.Column)
	}
	if b.Column == t.FeatureColumn {
		return dynrepo.NewConfigError(typeName(t.Type), b.Name, "column "+b.Column+" clashes with the feature column")
	}
	b.SkipOnConflict = skip
	t.Columns[b.Column] = b
	t.columns = append(t.columns, b)
	switch b.Column {
	case t.IDColumn:
		t.ID = b
		t.DuplicateUpdateColumns = append(t.DuplicateUpdateColumns, b.Column)
	case t.CreatedAtColumn:
		if t.UpdateCreatedAtOnConflict {
			t.DuplicateUpdateColumns = append(t.DuplicateUpdateColumns, b.Column)
		}
	default:
		if !skip {
			t.DuplicateUpdateColumns = append(t.DuplicateUpdateColumns, b.Column)
		}
	}
	return nil
}

func (t *Table) addSide(b *Binding) error {
	if _, ok := t.SideChannel[b.Column]; ok {
		return dynrepo.NewConfigError(typeName(t.Type), b.Name, "duplicate side-channel key "+b.Column)
	}
	t.SideChannel[b.Column] = b
	t.side = append(t.side, b)
	return nil
}

type fieldSet struct {
	list   []reflect.StructField
	byName map[string]reflect.StructField
}

// structFields collects the exported fields of t in declaration order.
// Anonymous struct fields are flattened unless declared by name; outer
// fields shadow promoted ones.
func structFields(t reflect.Type, decls map[string]*field.Descriptor) *fieldSet {
	fs := &fieldSet{byName: make(map[string]reflect.StructField)}
	type level struct {
		t     reflect.Type
		index []int
	}
	queue := []level{{t: t}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		var embedded []level
		for i := 0; i < cur.t.NumField(); i++ {
			f := cur.t.Field(i)
			f.Index = append(append([]int(nil), cur.index...), i)
			if f.Anonymous && decls[f.Name] == nil {
				ft := f.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					embedded = append(embedded, level{t: ft, index: f.Index})
					continue
				}
			}
			if !f.IsExported() {
				continue
			}
			if _, ok := fs.byName[f.Name]; ok {
				continue
			}
			fs.byName[f.Name] = f
			fs.list = append(fs.list, f)
		}
		queue = append(queue, embedded...)
	}
	return fs
}
