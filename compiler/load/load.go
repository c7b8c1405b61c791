// Package load reads YAML entity declarations for the query builder
// generator. A declaration file names the Go package that holds the
// entities and lists each entity with its fields:
//
//	package: example.com/app/model
//	entities:
//	  - name: User
//	    fields:
//	      - name: ID
//	        type: int64
//	      - name: Birthday
//	        type: "*time.Time"
//	        imports: {time: time}
//	      - name: Status
//	        type: Status
//	        kind: string
//	      - name: Address
//	        type: string
//	        query: false
//
// A file may hold several YAML documents. Unknown keys are rejected.
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/dynrepo/compiler/gen"
	"github.com/syssam/dynrepo/internal/naming"
)

// DefaultFeatureColumn is the feature column used when an entity does not
// name one.
const DefaultFeatureColumn = "feature"

// File is a single declaration document.
type File struct {
	Package  string   `yaml:"package"`
	Name     string   `yaml:"name,omitempty"`
	Entities []Entity `yaml:"entities"`
}

// Entity is an entity declaration.
type Entity struct {
	Name          string  `yaml:"name"`
	Table         string  `yaml:"table,omitempty"`
	FeatureColumn string  `yaml:"feature_column,omitempty"`
	Fields        []Field `yaml:"fields"`
}

// Field is a field declaration. Either Name or Column must be set; the other
// is derived from it.
type Field struct {
	Name    string            `yaml:"name,omitempty"`
	Column  string            `yaml:"column,omitempty"`
	Type    string            `yaml:"type"`
	Kind    string            `yaml:"kind,omitempty"`
	Imports map[string]string `yaml:"imports,omitempty"`
	Query   *bool             `yaml:"query,omitempty"`
}

// Entities converts the document into generator input, applying defaults.
func (f *File) Entities() ([]*gen.Entity, error) {
	if f.Package == "" {
		return nil, gen.NewSchemaError("", "", "package is required", nil)
	}
	out := make([]*gen.Entity, 0, len(f.Entities))
	for _, e := range f.Entities {
		ge := &gen.Entity{
			Name:          e.Name,
			Package:       f.Name,
			PkgPath:       f.Package,
			Table:         e.Table,
			FeatureColumn: e.FeatureColumn,
		}
		if ge.Table == "" && e.Name != "" {
			ge.Table = naming.Table(e.Name)
		}
		if ge.FeatureColumn == "" {
			ge.FeatureColumn = DefaultFeatureColumn
		}
		for _, fd := range e.Fields {
			gf, err := fd.field(e.Name)
			if err != nil {
				return nil, err
			}
			ge.Fields = append(ge.Fields, gf)
		}
		out = append(out, ge)
	}
	return out, nil
}

func (f Field) field(entity string) (gen.Field, error) {
	gf := gen.Field{
		Name:   f.Name,
		Column: f.Column,
		Type:   gen.TypeRef{Expr: f.Type, Imports: f.Imports},
		Query:  f.Query == nil || *f.Query,
	}
	switch {
	case gf.Name == "" && gf.Column == "":
		return gf, gen.NewSchemaError(entity, "", "field needs a name or a column", nil)
	case gf.Name == "":
		gf.Name = naming.Pascal(gf.Column)
	case gf.Column == "":
		gf.Column = naming.Snake(gf.Name)
	}
	if f.Type == "" {
		return gf, gen.NewSchemaError(entity, gf.Name, "type is required", nil)
	}
	if f.Kind != "" {
		k, ok := gen.ParseKind(f.Kind)
		if !ok {
			return gf, gen.NewSchemaError(entity, gf.Name, fmt.Sprintf("unknown kind %q", f.Kind), nil)
		}
		gf.Type.Kind = k
	}
	return gf, nil
}

// Parse decodes every document in data and returns the validated entities.
func Parse(data []byte) ([]*gen.Entity, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var entities []*gen.Entity
	for {
		var f File
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load: decode: %w", err)
		}
		es, err := f.Entities()
		if err != nil {
			return nil, err
		}
		entities = append(entities, es...)
	}
	if len(entities) == 0 {
		return nil, gen.NewSchemaError("", "", "no entities declared", nil)
	}
	if err := gen.Validate(entities...); err != nil {
		return nil, err
	}
	return entities, nil
}

// Load reads and parses the declaration file at path.
func Load(path string) ([]*gen.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	entities, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return entities, nil
}

// LoadDir parses every .yaml and .yml file in dir, in name order. The
// entities of all files are validated together.
func LoadDir(dir string) ([]*gen.Entity, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load: no declaration files in %s", dir)
	}
	var entities []*gen.Entity
	for _, path := range files {
		es, err := Load(path)
		if err != nil {
			return nil, err
		}
		entities = append(entities, es...)
	}
	if err := gen.Validate(entities...); err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	return entities, nil
}

// Files returns the declaration files in dir, sorted.
func Files(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return files, nil
}

// Path loads a single file or, for a directory, every declaration file in it.
func Path(path string) ([]*gen.Entity, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if fi.IsDir() {
		return LoadDir(path)
	}
	return Load(path)
}
