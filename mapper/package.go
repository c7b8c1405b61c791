package mapper

import (
	"fmt"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/metadata"
)

// ToRow converts entity into a row with the default Marshaller.
func ToRow(entity any, meta *metadata.Table, create bool) (dynrepo.Row, error) {
	return std.ToRow(entity, meta, create)
}

// ToRows converts entities into rows with the default Marshaller.
func ToRows(entities any, meta *metadata.Table, create bool) ([]dynrepo.Row, error) {
	return std.ToRows(entities, meta, create)
}

// FromRow materializes an entity with the default Marshaller.
func FromRow(row dynrepo.Row, meta *metadata.Table) (any, error) {
	return std.FromRow(row, meta)
}

// FromRows materializes entities with the default Marshaller.
func FromRows(rows []dynrepo.Row, meta *metadata.Table) ([]any, error) {
	return std.FromRows(rows, meta)
}

// Decode materializes a *T from row using the metadata of T.
func Decode[T any](m *Marshaller, row dynrepo.Row) (*T, error) {
	meta, err := metadata.For[T]()
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = std
	}
	e, err := m.FromRow(row, meta)
	if err != nil || e == nil {
		return nil, err
	}
	t, ok := e.(*T)
	if !ok {
		return nil, fmt.Errorf("mapper: unexpected entity type %T", e)
	}
	return t, nil
}

// DecodeAll materializes a *T per row using the metadata of T.
func DecodeAll[T any](m *Marshaller, rows []dynrepo.Row) ([]*T, error) {
	out := make([]*T, 0, len(rows))
	for i, row := range rows {
		t, err := Decode[T](m, row)
		if err != nil {
			return nil, fmt.Errorf("mapper: row %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
