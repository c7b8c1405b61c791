package convert

import (
	"reflect"

	"github.com/syssam/dynrepo/internal/memo"
)

// Descriptor is a structural description of a Go type: its kind, the type
// itself and the descriptors of its type arguments. Unnamed slices, arrays and
// pointers have one argument (the element), unnamed maps two (key and
// element). Named types, generic instantiations included, are compared by
// identity and carry no arguments.
type Descriptor struct {
	Kind reflect.Kind
	Type reflect.Type
	Args []*Descriptor
}

var descriptors memo.Cache[reflect.Type, *Descriptor]

// Describe returns the cached descriptor of t.
func Describe(t reflect.Type) *Descriptor {
	d, _ := descriptors.Get(t, func(t reflect.Type) (*Descriptor, error) {
		return describe(t), nil
	})
	return d
}

func describe(t reflect.Type) *Descriptor {
	d := &Descriptor{Kind: t.Kind(), Type: t}
	if t.Name() != "" {
		return d
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		d.Args = []*Descriptor{Describe(t.Elem())}
	case reflect.Map:
		d.Args = []*Descriptor{Describe(t.Key()), Describe(t.Elem())}
	}
	return d
}

// Named reports whether the described type has a name.
func (d *Descriptor) Named() bool {
	return d.Type.Name() != ""
}

// Parameterized reports whether the described type carries type arguments.
func (d *Descriptor) Parameterized() bool {
	return len(d.Args) > 0
}

// Equal reports whether d and o describe structurally equal types: the same
// kind, the same named type when either is named, and pairwise equal
// arguments.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil || d.Kind != o.Kind {
		return false
	}
	if d.Named() || o.Named() {
		return d.Type == o.Type
	}
	if len(d.Args) != len(o.Args) {
		return false
	}
	if d.Kind == reflect.Array && d.Type.Len() != o.Type.Len() {
		return false
	}
	for i := range d.Args {
		if !d.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	if len(d.Args) == 0 {
		return d.Type == o.Type
	}
	return true
}

// Accepts reports whether a value of type t can be assigned to a field
// described by d without conversion.
func (d *Descriptor) Accepts(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if d.Kind == reflect.Interface {
		return t.Implements(d.Type)
	}
	if t == d.Type {
		return true
	}
	return d.Equal(Describe(t))
}
