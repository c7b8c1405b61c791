package convert

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/syssam/dynrepo"
)

var uuidType = reflect.TypeFor[uuid.UUID]()

// UUID stores uuid.UUID fields as their canonical 36 character string.
type UUID struct{}

// Serialize returns the string form of a uuid.UUID or *uuid.UUID. The nil
// UUID and nil pointers are omitted.
func (UUID) Serialize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		if x == uuid.Nil {
			return nil, nil
		}
		return x.String(), nil
	case *uuid.UUID:
		if x == nil || *x == uuid.Nil {
			return nil, nil
		}
		return x.String(), nil
	case string:
		if _, err := uuid.Parse(x); err != nil {
			return nil, dynrepo.NewConversionError("uuid", v, err)
		}
		return x, nil
	default:
		return nil, dynrepo.NewConversionError("uuid", v, fmt.Errorf("unsupported type %T", v))
	}
}

// Deserialize parses text or raw 16-byte values into a uuid.UUID, or a
// pointer to one.
func (c UUID) Deserialize(target reflect.Type, stored any) (any, error) {
	if stored == nil {
		return nil, nil
	}
	if target.Kind() == reflect.Pointer {
		v, err := c.Deserialize(target.Elem(), stored)
		if err != nil || v == nil {
			return nil, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(reflect.ValueOf(v))
		return p.Interface(), nil
	}
	if target != uuidType {
		return nil, dynrepo.NewConversionError(target.String(), stored, fmt.Errorf("uuid converter cannot fill %s", target))
	}
	var (
		id  uuid.UUID
		err error
	)
	switch x := stored.(type) {
	case uuid.UUID:
		id = x
	case string:
		id, err = uuid.Parse(x)
	case []byte:
		if len(x) == 16 {
			id, err = uuid.FromBytes(x)
		} else {
			id, err = uuid.ParseBytes(x)
		}
	default:
		err = fmt.Errorf("unsupported source %T", stored)
	}
	if err != nil {
		return nil, dynrepo.NewConversionError(target.String(), stored, err)
	}
	return id, nil
}
