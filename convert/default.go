package convert

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/internal/memo"
)

// Default is the converter used when a field declares none. Serialize is the
// identity; Deserialize coerces stored values into the target type.
type Default struct{}

// Serialize returns v unchanged.
func (Default) Serialize(v any) (any, error) {
	return v, nil
}

// Deserialize converts stored into a value of type target:
//
//   - nil stays nil;
//   - pointer targets are filled from the converted element;
//   - numeric kinds and decimal.Decimal parse the canonical string form of
//     stored through ParseDecimal;
//   - bool parses the canonical form with strconv.ParseBool;
//   - string kinds take the canonical form, []byte its bytes;
//   - time.Time accepts times and the text layouts drivers emit;
//   - sql.Scanner implementations scan stored;
//   - anything else is decoded structurally from JSON text or from the
//     JSON encoding of stored.
func (Default) Deserialize(target reflect.Type, stored any) (any, error) {
	if stored == nil {
		return nil, nil
	}
	if reflect.TypeOf(stored) == target {
		return stored, nil
	}
	dec, _ := plans.Get(target, plan)
	v, err := dec(stored)
	if err != nil {
		var ce *dynrepo.ConversionError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, dynrepo.NewConversionError(target.String(), stored, err)
	}
	return v, nil
}

// decodeFunc converts a non-nil stored value into the target type it was
// planned for.
type decodeFunc func(stored any) (any, error)

// plans caches one decoder per distinct target type, parameterized
// containers included.
var plans memo.Cache[reflect.Type, decodeFunc]

var (
	timeType    = reflect.TypeFor[time.Time]()
	decimalType = reflect.TypeFor[decimal.Decimal]()
	scannerType = reflect.TypeFor[sql.Scanner]()
	bytesType   = reflect.TypeFor[[]byte]()
)

func plan(t reflect.Type) (decodeFunc, error) {
	switch {
	case t.Kind() == reflect.Pointer:
		elem, _ := plans.Get(t.Elem(), plan)
		return func(stored any) (any, error) {
			v, err := elem(stored)
			if err != nil || v == nil {
				return nil, err
			}
			p := reflect.New(t.Elem())
			p.Elem().Set(reflect.ValueOf(v))
			return p.Interface(), nil
		}, nil
	case t == decimalType:
		return func(stored any) (any, error) {
			return ParseDecimal(stored)
		}, nil
	case t == timeType:
		return decodeTime, nil
	case reflect.PointerTo(t).Implements(scannerType):
		return func(stored any) (any, error) {
			p := reflect.New(t)
			if err := p.Interface().(sql.Scanner).Scan(stored); err != nil {
				return nil, err
			}
			return p.Elem().Interface(), nil
		}, nil
	case isNumeric(t.Kind()):
		return func(stored any) (any, error) {
			v := reflect.New(t).Elem()
			if err := setNumber(v, stored); err != nil {
				return nil, err
			}
			return v.Interface(), nil
		}, nil
	case t.Kind() == reflect.Bool:
		return func(stored any) (any, error) {
			b, err := strconv.ParseBool(strings.TrimSpace(Canonical(stored)))
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}, nil
	case t.Kind() == reflect.String:
		return func(stored any) (any, error) {
			return reflect.ValueOf(Canonical(stored)).Convert(t).Interface(), nil
		}, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return func(stored any) (any, error) {
			var b []byte
			switch x := stored.(type) {
			case []byte:
				b = bytes.Clone(x)
			default:
				b = []byte(Canonical(x))
			}
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}, nil
	case t.Kind() == reflect.Interface:
		return func(stored any) (any, error) {
			if reflect.TypeOf(stored).Implements(t) {
				return stored, nil
			}
			return decodeJSON(t, stored)
		}, nil
	default:
		return func(stored any) (any, error) {
			return decodeJSON(t, stored)
		}, nil
	}
}

// DecodeJSON decodes stored into a new value of type t. Strings and byte
// slices holding valid JSON are decoded directly; any other value is encoded
// to JSON first.
func DecodeJSON(t reflect.Type, stored any) (any, error) {
	if stored == nil {
		return nil, nil
	}
	v, err := decodeJSON(t, stored)
	if err != nil {
		return nil, dynrepo.NewConversionError(t.String(), stored, err)
	}
	return v, nil
}

func decodeJSON(t reflect.Type, stored any) (any, error) {
	var data []byte
	switch x := stored.(type) {
	case string:
		if json.Valid([]byte(x)) {
			data = []byte(x)
		}
	case []byte:
		if json.Valid(x) {
			data = x
		}
	case json.RawMessage:
		data = x
	}
	if data == nil {
		var err error
		if data, err = json.Marshal(stored); err != nil {
			return nil, err
		}
	}
	p := reflect.New(t)
	if err := json.Unmarshal(data, p.Interface()); err != nil {
		return nil, err
	}
	return p.Elem().Interface(), nil
}

// Layouts accepted when a time value is stored as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.DateOnly,
}

func decodeTime(stored any) (any, error) {
	switch x := stored.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		if x == nil {
			return nil, nil
		}
		return *x, nil
	case string, []byte:
		s := strings.TrimSpace(Canonical(x))
		// time.Time.String appends the monotonic clock reading.
		if i := strings.Index(s, " m="); i > 0 {
			s = s[:i]
		}
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unrecognized time format %q", s)
	default:
		return nil, fmt.Errorf("unsupported time source %T", stored)
	}
}
