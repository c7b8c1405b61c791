package convert

import (
	"encoding/json"
	"reflect"

	"github.com/syssam/dynrepo"
)

// JSON stores a value as JSON text. It suits struct, slice and map fields
// kept in their own text column.
type JSON struct{}

// Serialize encodes v as JSON text. Nil values, including typed nil
// pointers, maps and slices, are omitted.
func (JSON) Serialize(v any) (any, error) {
	if IsNil(v) {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, dynrepo.NewConversionError("json", v, err)
	}
	return string(b), nil
}

// Deserialize decodes JSON text, or the JSON encoding of an already
// structured value, into target.
func (JSON) Deserialize(target reflect.Type, stored any) (any, error) {
	return DecodeJSON(target, stored)
}

// IsNil reports whether v is nil or a nil pointer, map, slice, interface,
// func or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
