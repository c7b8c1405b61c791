package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/convert"
	"github.com/syssam/dynrepo/metadata"
)

// Marshaller converts between entities and rows. It is safe for concurrent
// use; it keeps no state besides its options.
type Marshaller struct {
	now func() time.Time
	log *zap.Logger
}

// Option configures a Marshaller.
type Option func(*Marshaller)

// WithClock sets the clock used for the created-at and updated-at columns.
func WithClock(now func() time.Time) Option {
	return func(m *Marshaller) {
		m.now = now
	}
}

// WithLogger sets the logger for best-effort write failures. The global zap
// logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(m *Marshaller) {
		m.log = l
	}
}

// New returns a Marshaller configured with opts.
func New(opts ...Option) *Marshaller {
	m := &Marshaller{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var std = New()

func (m *Marshaller) logger() *zap.Logger {
	if m.log != nil {
		return m.log
	}
	return zap.L()
}

// ToRow converts entity, a value or pointer of the metadata type, into a
// row. The updated-at column defaults to the current time and the
// created-at column does too when create is true; a non-zero timestamp
// field on the entity overrides either default. Columns whose serialized
// value is nil are left out, as is a zero id. Side-channel values are packed
// as one JSON object under the feature column when there is at least one.
func (m *Marshaller) ToRow(entity any, meta *metadata.Table, create bool) (dynrepo.Row, error) {
	row := dynrepo.Row{}
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return row, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return row, nil
	}
	if v.Type() != meta.Type {
		return nil, dynrepo.NewConfigError(meta.Type.String(), "", "cannot marshal entity of type "+v.Type().String())
	}
	now := m.now()
	row[meta.UpdatedAtColumn] = now
	if create {
		row[meta.CreatedAtColumn] = now
	}
	for _, b := range meta.ColumnBindings() {
		val, ok, err := m.serialize(meta, b, v)
		if err != nil {
			return nil, err
		}
		if ok {
			row[b.Column] = val
		}
	}
	side := make(map[string]any)
	for _, b := range meta.SideChannelBindings() {
		val, ok, err := m.serialize(meta, b, v)
		if err != nil {
			return nil, err
		}
		if ok {
			side[b.Column] = val
		}
	}
	if len(side) > 0 {
		text, err := json.Marshal(side)
		if err != nil {
			return nil, dynrepo.NewConversionError("json", side, err)
		}
		row[meta.FeatureColumn] = string(text)
	}
	return row, nil
}

// serialize reads a field and runs it through its converter. It reports
// false when the value must be left out of the row.
func (m *Marshaller) serialize(meta *metadata.Table, b *metadata.Binding, v reflect.Value) (any, bool, error) {
	val, err := b.Get(v)
	if err != nil {
		m.logger().Warn("mapper: omitting unreadable field",
			zap.String("entity", meta.Name()),
			zap.String("field", b.Name),
			zap.Error(err),
		)
		return nil, false, nil
	}
	// A zero id is left for the database to generate.
	if b == meta.ID && isZero(val) {
		return nil, false, nil
	}
	// A zero timestamp keeps the clock default.
	if (b.Column == meta.CreatedAtColumn || b.Column == meta.UpdatedAtColumn) && isZero(val) {
		return nil, false, nil
	}
	conv, err := b.Resolve()
	if err != nil {
		return nil, false, err
	}
	out, err := conv.Serialize(val)
	if err != nil {
		return nil, false, conversionError(b.Type, val, err)
	}
	if convert.IsNil(out) {
		return nil, false, nil
	}
	return out, true, nil
}

func isZero(v any) bool {
	return v == nil || reflect.ValueOf(v).IsZero()
}

// ToRows converts a slice of entities element-wise, preserving order. A nil
// or empty slice yields an empty result without touching any field.
func (m *Marshaller) ToRows(entities any, meta *metadata.Table, create bool) ([]dynrepo.Row, error) {
	if entities == nil {
		return []dynrepo.Row{}, nil
	}
	v := reflect.ValueOf(entities)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, dynrepo.NewConfigError(meta.Type.String(), "", "expected a slice of entities, got "+v.Type().String())
	}
	rows := make([]dynrepo.Row, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		row, err := m.ToRow(v.Index(i).Interface(), meta, create)
		if err != nil {
			return nil, fmt.Errorf("mapper: entity %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FromRow materializes a new entity from row and returns it as a pointer to
// the metadata type. Keys are matched against column names ignoring case.
// A nil row yields a nil entity.
func (m *Marshaller) FromRow(row dynrepo.Row, meta *metadata.Table) (any, error) {
	if row == nil {
		return nil, nil
	}
	ptr, err := construct(meta)
	if err != nil {
		return nil, err
	}
	idx := newIndex(row)
	for _, b := range meta.ColumnBindings() {
		val, ok := idx.lookup(b.Column)
		if !ok || val == nil {
			continue
		}
		if err := assign(meta, b, ptr, val); err != nil {
			return nil, err
		}
	}
	raw, ok := idx.lookup(meta.FeatureColumn)
	if !ok || raw == nil || len(meta.SideChannelBindings()) == 0 {
		return ptr.Interface(), nil
	}
	doc, err := decodeFeature(raw)
	if err != nil {
		return nil, err
	}
	for _, b := range meta.SideChannelBindings() {
		val, ok := doc[b.Column]
		if !ok || val == nil {
			continue
		}
		if err := assign(meta, b, ptr, val); err != nil {
			return nil, err
		}
	}
	return ptr.Interface(), nil
}

// FromRows materializes one entity per row, preserving order.
func (m *Marshaller) FromRows(rows []dynrepo.Row, meta *metadata.Table) ([]any, error) {
	out := make([]any, 0, len(rows))
	for i, row := range rows {
		e, err := m.FromRow(row, meta)
		if err != nil {
			return nil, fmt.Errorf("mapper: row %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func construct(meta *metadata.Table) (ptr reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = dynrepo.NewConstructionError(meta.Type.String(), fmt.Errorf("%v", r))
		}
	}()
	return meta.New(), nil
}

// assign stores val into the field of b, directly when the value type is
// compatible with the field type and through the field converter otherwise.
func assign(meta *metadata.Table, b *metadata.Binding, ptr reflect.Value, val any) error {
	if b.Accepts(val) {
		return b.Set(ptr, val)
	}
	conv, err := b.Resolve()
	if err != nil {
		return err
	}
	out, err := conv.Deserialize(b.Type, val)
	if err != nil {
		return fmt.Errorf("mapper: %s.%s: %w", meta.Name(), b.Name, conversionError(b.Type, val, err))
	}
	if out == nil {
		return nil
	}
	return b.Set(ptr, out)
}

func decodeFeature(raw any) (map[string]any, error) {
	var data []byte
	switch x := raw.(type) {
	case string:
		data = []byte(x)
	case []byte:
		data = x
	case json.RawMessage:
		data = x
	case map[string]any:
		return x, nil
	default:
		return nil, dynrepo.NewConversionError("feature", raw, fmt.Errorf("unsupported feature value %T", raw))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, dynrepo.NewConversionError("feature", raw, err)
	}
	return doc, nil
}

func conversionError(t reflect.Type, val any, err error) error {
	var ce *dynrepo.ConversionError
	if errors.As(err, &ce) {
		return err
	}
	return dynrepo.NewConversionError(t.String(), val, err)
}

// index resolves row keys ignoring case. Exact matches win; among keys that
// differ only in case the smallest one is used.
type index struct {
	row   dynrepo.Row
	lower map[string]string
}

func newIndex(row dynrepo.Row) *index {
	idx := &index{row: row, lower: make(map[string]string, len(row))}
	for k := range row {
		l := strings.ToLower(k)
		if prev, ok := idx.lower[l]; !ok || k < prev {
			idx.lower[l] = k
		}
	}
	return idx
}

func (idx *index) lookup(column string) (any, bool) {
	if v, ok := idx.row[column]; ok {
		return v, true
	}
	k, ok := idx.lower[strings.ToLower(column)]
	if !ok {
		return nil, false
	}
	return idx.row[k], true
}
