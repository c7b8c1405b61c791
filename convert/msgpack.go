package convert

import (
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/dynrepo"
)

// Msgpack stores a value as MessagePack bytes. When the field lives in the
// feature column the bytes travel as base64 text, which Deserialize accepts
// as well.
type Msgpack struct{}

// Serialize encodes v with MessagePack.
func (Msgpack) Serialize(v any) (any, error) {
	if IsNil(v) {
		return nil, nil
	}
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, dynrepo.NewConversionError("msgpack", v, err)
	}
	return b, nil
}

// Deserialize decodes MessagePack bytes, or base64 text of them, into target.
func (Msgpack) Deserialize(target reflect.Type, stored any) (any, error) {
	var data []byte
	switch x := stored.(type) {
	case nil:
		return nil, nil
	case []byte:
		data = x
	case string:
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return nil, dynrepo.NewConversionError(target.String(), stored, err)
		}
		data = b
	default:
		return nil, dynrepo.NewConversionError(target.String(), stored, fmt.Errorf("msgpack: unsupported source %T", stored))
	}
	p := reflect.New(target)
	if err := msgpack.Unmarshal(data, p.Interface()); err != nil {
		return nil, dynrepo.NewConversionError(target.String(), stored, err)
	}
	return p.Elem().Interface(), nil
}
