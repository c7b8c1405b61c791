package gen

import (
	"cmp"
	"go/token"
	"path"
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/dynrepo/internal/naming"
	"github.com/syssam/dynrepo/metadata"
)

// Entity is the generator input for one entity type.
type Entity struct {
	Name          string // Go type name
	Package       string // package name; defaults to the last element of PkgPath
	PkgPath       string // import path of the package declaring the entity
	Table         string
	FeatureColumn string
	Fields        []Field
}

// Field is a single entity field.
type Field struct {
	Name   string // Go field name
	Column string // column name, or side-channel key for non-query fields
	Type   TypeRef
	Query  bool // has its own column and receives condition methods
}

// Condition method suffixes, in generation order.
const (
	MethodEq        = "Eq"
	MethodNe        = "Ne"
	MethodGt        = "Gt"
	MethodGe        = "Ge"
	MethodLt        = "Lt"
	MethodLe        = "Le"
	MethodLike      = "Like"
	MethodLikeLeft  = "LikeLeft"
	MethodLikeRight = "LikeRight"
	MethodIn        = "In"
	MethodNotIn     = "NotIn"
	MethodIsNull    = "IsNull"
	MethodIsNotNull = "IsNotNull"
	MethodAsc       = "Asc"
	MethodDesc      = "Desc"
)

// Methods returns the condition methods generated for f. Non-query fields
// get none.
func Methods(f Field) []string {
	if !f.Query {
		return nil
	}
	ms := []string{MethodEq, MethodNe}
	switch f.Type.Class() {
	case ClassNumeric:
		ms = append(ms, MethodGt, MethodGe, MethodLt, MethodLe)
	case ClassString:
		ms = append(ms, MethodLike, MethodLikeLeft, MethodLikeRight)
	}
	return append(ms, MethodIn, MethodNotIn, MethodIsNull, MethodIsNotNull, MethodAsc, MethodDesc)
}

// title capitalizes the first letter and keeps the rest. A Caser is not safe
// for concurrent use, so one is made per call.
func title(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// QueryName returns the generated query type name.
func (e *Entity) QueryName() string {
	return title(e.Name) + "Query"
}

// PackageName returns the package clause of the generated file.
func (e *Entity) PackageName() string {
	if e.Package != "" {
		return e.Package
	}
	return path.Base(e.PkgPath)
}

// FileName returns the generated file name.
func (e *Entity) FileName() string {
	return naming.Snake(e.Name) + "_query.go"
}

// selector returns the selector constant name of f.
func (e *Entity) selector(f Field) string {
	return title(e.Name) + "Select" + title(f.Name)
}

// selectKey returns the value of the selector constant of f. Fields packed
// into the feature column select that column.
func (e *Entity) selectKey(f Field) string {
	if f.Query {
		return f.Column
	}
	return e.FeatureColumn
}

// FromMetadata converts extracted table metadata into generator input.
// Column bindings become query fields and side-channel bindings non-query
// fields, ordered by struct field position.
func FromMetadata(t *metadata.Table) (*Entity, error) {
	if t == nil {
		return nil, NewSchemaError("", "", "nil table metadata", nil)
	}
	e := &Entity{
		Name:          t.Name(),
		PkgPath:       t.Type.PkgPath(),
		Table:         t.TableName,
		FeatureColumn: t.FeatureColumn,
	}
	type positioned struct {
		index []int
		field Field
	}
	var fields []positioned
	add := func(b *metadata.Binding, query bool) error {
		sf, ok := t.Type.FieldByName(b.Name)
		if !ok {
			return NewSchemaError(e.Name, b.Name, "bound field not found on type", nil)
		}
		fields = append(fields, positioned{
			index: sf.Index,
			field: Field{Name: b.Name, Column: b.Column, Type: TypeOf(b.Type), Query: query},
		})
		return nil
	}
	for _, b := range t.ColumnBindings() {
		if err := add(b, true); err != nil {
			return nil, err
		}
	}
	for _, b := range t.SideChannelBindings() {
		if err := add(b, false); err != nil {
			return nil, err
		}
	}
	slices.SortStableFunc(fields, func(a, b positioned) int {
		return slices.Compare(a.index, b.index)
	})
	for _, f := range fields {
		e.Fields = append(e.Fields, f.field)
	}
	return e, nil
}

// Validate checks a set of entities that are generated into one package.
func Validate(entities ...*Entity) error {
	seen := make(map[string]bool, len(entities))
	pkg := ""
	for _, e := range entities {
		if err := e.validate(); err != nil {
			return err
		}
		if seen[e.QueryName()] {
			return NewSchemaError(e.Name, "", "duplicate entity", nil)
		}
		seen[e.QueryName()] = true
		switch {
		case pkg == "":
			pkg = e.PkgPath
		case pkg != e.PkgPath:
			return NewConfigError("Package", e.PkgPath, "all entities must be declared in "+pkg)
		}
	}
	return nil
}

func (e *Entity) validate() error {
	if e == nil {
		return NewSchemaError("", "", "nil entity", nil)
	}
	if !token.IsIdentifier(e.Name) {
		return NewSchemaError(e.Name, "", "invalid entity name", nil)
	}
	if e.PkgPath == "" {
		return NewSchemaError(e.Name, "", "package path is required", nil)
	}
	if !token.IsIdentifier(e.PackageName()) {
		return NewSchemaError(e.Name, "", "invalid package name "+e.PackageName(), nil)
	}
	methods := make(map[string]string)
	fields := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		switch {
		case !token.IsIdentifier(f.Name):
			return NewSchemaError(e.Name, f.Name, "invalid field name", nil)
		case fields[title(f.Name)]:
			return NewSchemaError(e.Name, f.Name, "duplicate field", nil)
		case f.Query && f.Column == "":
			return NewSchemaError(e.Name, f.Name, "query field has no column", nil)
		case !f.Query && e.FeatureColumn == "":
			return NewSchemaError(e.Name, f.Name, "non-query field requires a feature column", nil)
		}
		fields[title(f.Name)] = true
		if _, err := f.Type.param(e.PkgPath); err != nil {
			return NewSchemaError(e.Name, f.Name, "invalid type", err)
		}
		for _, m := range Methods(f) {
			name := title(f.Name) + m
			if other, ok := methods[name]; ok {
				return NewSchemaError(e.Name, f.Name, "method "+name+" clashes with field "+other, nil)
			}
			methods[name] = f.Name
		}
	}
	return nil
}

// sortEntities returns the entities ordered by name.
func sortEntities(entities []*Entity) []*Entity {
	sorted := slices.Clone(entities)
	slices.SortFunc(sorted, func(a, b *Entity) int {
		if a == nil || b == nil {
			return cmp.Compare(boolInt(a != nil), boolInt(b != nil))
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return sorted
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
