package metadata

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/convert"
)

var errNilEmbedded = errors.New("nil embedded pointer")

// Binding binds a struct field to a column or a side-channel key. Its
// accessors are captured once from the field index path when the table
// metadata is built.
type Binding struct {
	Name           string              // Go field name
	Column         string              // column name, or logical key for side-channel fields
	Type           reflect.Type        // field type
	Desc           *convert.Descriptor // structural descriptor of Type
	Converter      convert.Key         // zero means convert.Default
	SkipOnConflict bool

	entity string
	get    func(reflect.Value) (reflect.Value, error)
	set    func(reflect.Value) (reflect.Value, error)
}

func newBinding(entity reflect.Type, f reflect.StructField, column string, conv convert.Key) *Binding {
	return &Binding{
		Name:      f.Name,
		Column:    column,
		Type:      f.Type,
		Desc:      convert.Describe(f.Type),
		Converter: conv,
		entity:    entity.Name(),
		get:       getter(f.Index),
		set:       setter(f.Index),
	}
}

// getter walks the index path without allocating. A nil embedded pointer on
// the way is an access error.
func getter(index []int) func(reflect.Value) (reflect.Value, error) {
	return func(v reflect.Value) (reflect.Value, error) {
		for i, x := range index {
			if i > 0 && v.Kind() == reflect.Pointer {
				if v.IsNil() {
					return reflect.Value{}, errNilEmbedded
				}
				v = v.Elem()
			}
			v = v.Field(x)
		}
		return v, nil
	}
}

// setter walks the index path, allocating nil embedded pointers.
func setter(index []int) func(reflect.Value) (reflect.Value, error) {
	return func(v reflect.Value) (reflect.Value, error) {
		for i, x := range index {
			if i > 0 && v.Kind() == reflect.Pointer {
				if v.IsNil() {
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
			v = v.Field(x)
		}
		if !v.CanSet() {
			return reflect.Value{}, errors.New("field is not settable")
		}
		return v, nil
	}
}

// Get reads the field from entity, which must be a struct value or a
// pointer to one.
func (b *Binding) Get(entity reflect.Value) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, dynrepo.NewFieldAccessError(b.entity, b.Name, "read", fmt.Errorf("%v", r))
		}
	}()
	entity = reflect.Indirect(entity)
	f, err := b.get(entity)
	if err != nil {
		return nil, dynrepo.NewFieldAccessError(b.entity, b.Name, "read", err)
	}
	return f.Interface(), nil
}

// Set assigns value to the field of entity, which must be an addressable
// struct value or a non-nil pointer to one. The value must be assignable to
// the field type.
func (b *Binding) Set(entity reflect.Value, value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = dynrepo.NewFieldAccessError(b.entity, b.Name, "write", fmt.Errorf("%v", r))
		}
	}()
	entity = reflect.Indirect(entity)
	f, err := b.set(entity)
	if err != nil {
		return dynrepo.NewFieldAccessError(b.entity, b.Name, "write", err)
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		f.SetZero()
		return nil
	}
	if !rv.Type().AssignableTo(b.Type) {
		return dynrepo.NewFieldAccessError(b.entity, b.Name, "write", fmt.Errorf("%s is not assignable to %s", rv.Type(), b.Type))
	}
	f.Set(rv)
	return nil
}

// Accepts reports whether value can be assigned to the field without
// conversion.
func (b *Binding) Accepts(value any) bool {
	return value != nil && b.Desc.Accepts(reflect.TypeOf(value))
}

// Resolve returns the converter of the field.
func (b *Binding) Resolve() (convert.Converter, error) {
	return convert.Resolve(b.Converter)
}

// String returns the binding as "Field->column".
func (b *Binding) String() string {
	return b.Name + "->" + b.Column
}
