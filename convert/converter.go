// Package convert defines the converter protocol used by the entity
// marshaller and the process-wide converter registry.
package convert

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/internal/memo"
)

// Converter transforms a field value into its stored form and back.
// Implementations must be stateless; a single instance per type is shared
// by the whole process.
type Converter interface {
	// Serialize returns the storable form of v. A nil result omits the
	// value from the row.
	Serialize(v any) (any, error)
	// Deserialize converts a stored value into a value of type target.
	// A nil result leaves the field untouched.
	Deserialize(target reflect.Type, stored any) (any, error)
}

// Initializer is implemented by converters that need one-time setup after
// allocation. An Init error fails the resolution of the converter.
type Initializer interface {
	Init() error
}

// Key identifies a converter by its Go type. A type and a pointer to it
// name the same converter.
type Key struct {
	t reflect.Type
}

// Of returns the key of converter type T. T may be a struct type or a
// pointer to one.
func Of[T any]() Key {
	return KeyOf(reflect.TypeFor[T]())
}

// KeyOf returns the key for the converter type t, with one level of
// pointer indirection removed.
func KeyOf(t reflect.Type) Key {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return Key{t: t}
}

// DefaultKey is the key of the Default converter.
var DefaultKey = Of[Default]()

// IsZero reports whether k names no converter.
func (k Key) IsZero() bool {
	return k.t == nil
}

// Type returns the converter type.
func (k Key) Type() reflect.Type {
	return k.t
}

// String returns the converter type name.
func (k Key) String() string {
	if k.t == nil {
		return "<nil>"
	}
	return k.t.String()
}

var converterType = reflect.TypeFor[Converter]()

var registry memo.Cache[Key, Converter]

// Resolve returns the singleton converter for key, creating it on first use.
// A zero key resolves to the Default converter. Construction failures are
// returned as *dynrepo.ConstructionError and are not cached, so a later
// call retries construction.
func Resolve(key Key) (Converter, error) {
	if key.IsZero() {
		key = DefaultKey
	}
	return registry.Get(key, construct)
}

// MustResolve is like Resolve but panics if the converter cannot be created.
func MustResolve(key Key) Converter {
	c, err := Resolve(key)
	if err != nil {
		panic(err)
	}
	return c
}

// Instances reports how many converter constructions have been attempted.
func Instances() int64 {
	return registry.Builds()
}

func construct(key Key) (c Converter, err error) {
	t := key.t
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, dynrepo.NewConstructionError(key.String(), fmt.Errorf("%s is not a concrete type", t.Kind()))
	}
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, dynrepo.NewConstructionError(key.String(), fmt.Errorf("panic: %v", r))
		}
	}()
	v := reflect.New(t)
	var inst any
	switch {
	case v.Type().Implements(converterType):
		inst = v.Interface()
	case t.Implements(converterType):
		inst = v.Elem().Interface()
	default:
		return nil, dynrepo.NewConstructionError(key.String(), errors.New("type does not implement convert.Converter"))
	}
	if i, ok := inst.(Initializer); ok {
		if err := i.Init(); err != nil {
			return nil, dynrepo.NewConstructionError(key.String(), err)
		}
	}
	return inst.(Converter), nil
}
