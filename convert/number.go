package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var errOverflow = errors.New("value out of range")

// Canonical returns the canonical string form of a stored value: numbers in
// their shortest exact decimal notation, bytes as text, times in RFC 3339.
func Canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case decimal.Decimal:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// ParseDecimal parses the canonical form of v as a decimal number. Every
// numeric conversion goes through it, so integer and floating targets agree on
// any value representable in both.
func ParseDecimal(v any) (decimal.Decimal, error) {
	if d, ok := v.(decimal.Decimal); ok {
		return d, nil
	}
	return decimal.NewFromString(strings.TrimSpace(Canonical(v)))
}

// setNumber parses v and stores it into dst, which must be settable and of an
// integer, unsigned or float kind. Fractions are truncated toward zero for
// integer kinds.
func setNumber(dst reflect.Value, v any) error {
	d, err := ParseDecimal(v)
	if err != nil {
		return err
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := d.Truncate(0).BigInt()
		if !n.IsInt64() || dst.OverflowInt(n.Int64()) {
			return errOverflow
		}
		dst.SetInt(n.Int64())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := d.Truncate(0).BigInt()
		if n.Sign() < 0 || !n.IsUint64() || dst.OverflowUint(n.Uint64()) {
			return errOverflow
		}
		dst.SetUint(n.Uint64())
	case reflect.Float32, reflect.Float64:
		bits := 64
		if dst.Kind() == reflect.Float32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(d.String(), bits)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("%s is not a numeric kind", dst.Kind())
	}
	return nil
}

// isNumeric reports whether k is an integer, unsigned or float kind.
func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
