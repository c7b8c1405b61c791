package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"github.com/dave/jennifer/jen"
)

// Class is the coarse type class that decides which comparison methods a
// query field receives.
type Class uint8

const (
	ClassOther Class = iota
	ClassNumeric
	ClassString
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassNumeric:
		return "numeric"
	case ClassString:
		return "string"
	default:
		return "other"
	}
}

// TypeRef is a field type as Go source. Expr is a type expression such as
// "int64", "*time.Time" or "map[string]int". Every package qualifier used in
// Expr must appear in Imports.
type TypeRef struct {
	Expr    string
	Imports map[string]string // package name -> import path
	Kind    reflect.Kind      // underlying kind, pointers stripped; Invalid derives it from Expr
}

// Class returns the type class. Kind wins when set; otherwise only builtin
// identifiers in Expr are classified.
func (r TypeRef) Class() Class {
	if r.Kind != reflect.Invalid {
		return classOf(r.Kind)
	}
	x, err := parser.ParseExpr(r.Expr)
	if err != nil {
		return ClassOther
	}
	for {
		switch e := x.(type) {
		case *ast.StarExpr:
			x = e.X
			continue
		case *ast.ParenExpr:
			x = e.X
			continue
		case *ast.Ident:
			if k, ok := builtinKinds[e.Name]; ok {
				return classOf(k)
			}
		}
		return ClassOther
	}
}

func classOf(k reflect.Kind) Class {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return ClassNumeric
	case reflect.String:
		return ClassString
	default:
		return ClassOther
	}
}

var builtinKinds = map[string]reflect.Kind{
	"bool":       reflect.Bool,
	"int":        reflect.Int,
	"int8":       reflect.Int8,
	"int16":      reflect.Int16,
	"int32":      reflect.Int32,
	"rune":       reflect.Int32,
	"int64":      reflect.Int64,
	"uint":       reflect.Uint,
	"uint8":      reflect.Uint8,
	"byte":       reflect.Uint8,
	"uint16":     reflect.Uint16,
	"uint32":     reflect.Uint32,
	"uint64":     reflect.Uint64,
	"uintptr":    reflect.Uintptr,
	"float32":    reflect.Float32,
	"float64":    reflect.Float64,
	"complex64":  reflect.Complex64,
	"complex128": reflect.Complex128,
	"string":     reflect.String,
}

// ParseKind returns the reflect.Kind named s, as printed by Kind.String.
func ParseKind(s string) (reflect.Kind, bool) {
	for k := reflect.Bool; k <= reflect.UnsafePointer; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return reflect.Invalid, false
}

// TypeOf returns the TypeRef of t. Instantiated generic types and unnamed
// struct, func and chan types have no portable expression and become any.
func TypeOf(t reflect.Type) TypeRef {
	imports := make(map[string]string)
	expr := typeExpr(t, imports)
	k := t
	for k.Kind() == reflect.Pointer {
		k = k.Elem()
	}
	if len(imports) == 0 {
		imports = nil
	}
	return TypeRef{Expr: expr, Imports: imports, Kind: k.Kind()}
}

func typeExpr(t reflect.Type, imports map[string]string) string {
	if name := t.Name(); name != "" {
		if t.PkgPath() == "" {
			return name
		}
		if strings.ContainsRune(name, '[') {
			return "any"
		}
		pkg, _, _ := strings.Cut(t.String(), ".")
		if p, ok := imports[pkg]; ok && p != t.PkgPath() {
			return "any"
		}
		imports[pkg] = t.PkgPath()
		return pkg + "." + name
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeExpr(t.Elem(), imports)
	case reflect.Slice:
		return "[]" + typeExpr(t.Elem(), imports)
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), typeExpr(t.Elem(), imports))
	case reflect.Map:
		return "map[" + typeExpr(t.Key(), imports) + "]" + typeExpr(t.Elem(), imports)
	default:
		return "any"
	}
}

// param renders the type of a method parameter: the top-level pointer, if
// any, is stripped.
func (r TypeRef) param(local string) (jen.Code, error) {
	x, err := parser.ParseExpr(r.Expr)
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", r.Expr, err)
	}
	for {
		switch e := x.(type) {
		case *ast.ParenExpr:
			x = e.X
			continue
		case *ast.StarExpr:
			x = e.X
		}
		break
	}
	return r.render(x, local)
}

func (r TypeRef) render(x ast.Expr, local string) (jen.Code, error) {
	switch e := x.(type) {
	case *ast.Ident:
		if obj := types.Universe.Lookup(e.Name); obj != nil {
			if _, ok := obj.(*types.TypeName); ok {
				return jen.Id(e.Name), nil
			}
			return nil, fmt.Errorf("%q is not a type", e.Name)
		}
		if local == "" {
			return nil, fmt.Errorf("unknown type %q", e.Name)
		}
		return jen.Qual(local, e.Name), nil
	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported qualifier in %q", r.Expr)
		}
		path, ok := r.Imports[pkg.Name]
		if !ok {
			return nil, fmt.Errorf("unknown package %q in %q", pkg.Name, r.Expr)
		}
		return jen.Qual(path, e.Sel.Name), nil
	case *ast.StarExpr:
		elem, err := r.render(e.X, local)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil
	case *ast.ParenExpr:
		return r.render(e.X, local)
	case *ast.ArrayType:
		elem, err := r.render(e.Elt, local)
		if err != nil {
			return nil, err
		}
		if e.Len == nil {
			return jen.Index().Add(elem), nil
		}
		n, ok := e.Len.(*ast.BasicLit)
		if !ok || n.Kind != token.INT {
			return nil, fmt.Errorf("unsupported array length in %q", r.Expr)
		}
		return jen.Index(jen.Id(n.Value)).Add(elem), nil
	case *ast.MapType:
		key, err := r.render(e.Key, local)
		if err != nil {
			return nil, err
		}
		val, err := r.render(e.Value, local)
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(val), nil
	case *ast.InterfaceType:
		if e.Methods != nil && len(e.Methods.List) > 0 {
			return nil, fmt.Errorf("unsupported interface type %q", r.Expr)
		}
		return jen.Id("any"), nil
	default:
		return nil, fmt.Errorf("unsupported type expression %q", r.Expr)
	}
}
