package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const queryPkg = "github.com/syssam/dynrepo/query"

// Generator renders typed query builders and writes them to disk.
type Generator struct {
	cfg *Config
}

// New returns a Generator configured by opts.
func New(opts ...Option) (*Generator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() *Config {
	return g.cfg
}

// Render returns the source of the query builder of e. It has no side
// effects and the output depends only on e and the header.
func (g *Generator) Render(e *Entity) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	f := g.newFile(e)
	if err := genQuery(f, e); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, NewGenerationError("render", e.FileName(), "", err)
	}
	return buf.Bytes(), nil
}

type output struct {
	path string
	src  []byte
}

// Generate renders every entity and writes one file per entity into the
// target directory. Nothing is written unless all entities validate and
// render. It returns the written paths in entity name order.
func (g *Generator) Generate(ctx context.Context, entities ...*Entity) ([]string, error) {
	if g.cfg.Target == "" {
		return nil, NewConfigError("Target", nil, "no target directory: use WithTarget")
	}
	entities = sortEntities(entities)
	if err := Validate(entities...); err != nil {
		return nil, err
	}
	outputs := make([]output, 0, len(entities))
	for _, e := range entities {
		src, err := g.Render(e)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: filepath.Join(g.cfg.Target, e.FileName()), src: src})
	}
	if err := os.MkdirAll(g.cfg.Target, 0o755); err != nil {
		return nil, NewGenerationError("write", g.cfg.Target, "create target directory", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.cfg.Workers)
	for _, out := range outputs {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.WriteFile(out.path, out.src, 0o644); err != nil {
				return NewGenerationError("write", out.path, "", err)
			}
			g.cfg.Logger.Debug("wrote query builder", zap.String("file", out.path), zap.Int("bytes", len(out.src)))
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(outputs))
	for i, out := range outputs {
		paths[i] = out.path
	}
	g.cfg.Logger.Info("generated query builders", zap.String("target", g.cfg.Target), zap.Int("files", len(paths)))
	return paths, nil
}

// newFile creates a new Jennifer file in the entity package with the header comment.
func (g *Generator) newFile(e *Entity) *jen.File {
	f := jen.NewFilePathName(e.PkgPath, e.PackageName())
	if g.cfg.Header != "" {
		f.HeaderComment(g.cfg.Header)
	}
	f.ImportName(queryPkg, "query")
	return f
}

func genQuery(f *jen.File, e *Entity) error {
	q := e.QueryName()

	if len(e.Fields) > 0 {
		f.Comment("Selectors of " + e.Name + ".")
		f.Const().DefsFunc(func(g *jen.Group) {
			for _, fd := range e.Fields {
				g.Id(e.selector(fd)).Qual(queryPkg, "SelectKey").Op("=").Lit(e.selectKey(fd))
			}
		})
	}

	f.Commentf("%s is a typed query builder for %s.", q, e.Name)
	f.Type().Id(q).Struct(
		jen.Op("*").Qual(queryPkg, "Condition"),
	)

	f.Commentf("New%s returns an empty %s.", q, q)
	f.Func().Id("New" + q).Params().Op("*").Id(q).Block(
		jen.Return(jen.Op("&").Id(q).Values(
			jen.Id("Condition").Op(":").Qual(queryPkg, "For").Types(jen.Qual(e.PkgPath, e.Name)).Call(),
		)),
	)

	for _, fd := range e.Fields {
		methods := Methods(fd)
		if len(methods) == 0 {
			continue
		}
		typ, err := fd.Type.param(e.PkgPath)
		if err != nil {
			return NewSchemaError(e.Name, fd.Name, "invalid type", err)
		}
		for _, m := range methods {
			genMethod(f, q, fd, m, typ)
		}
	}

	genChain(f, q)
	return nil
}

// genMethod emits a typed wrapper that forwards to the Condition method m
// with the field column.
func genMethod(f *jen.File, q string, fd Field, m string, typ jen.Code) {
	name := title(fd.Name) + m
	col := jen.Lit(fd.Column)
	var (
		params []jen.Code
		call   jen.Code
	)
	switch m {
	case MethodIn, MethodNotIn:
		f.Commentf("%s adds the predicate %s %s vs.", name, fd.Column, opNames[m])
		params = append(params, jen.Id("vs").Op("...").Add(typ))
		call = jen.Id("q").Dot("Condition").Dot(m).Call(col, jen.Id("vs"))
	case MethodIsNull, MethodIsNotNull, MethodAsc, MethodDesc:
		f.Commentf("%s %s %s.", name, unaryDocs[m], fd.Column)
		call = jen.Id("q").Dot("Condition").Dot(m).Call(col)
	default:
		f.Commentf("%s adds the predicate %s %s v.", name, fd.Column, opNames[m])
		params = append(params, jen.Id("v").Add(typ))
		call = jen.Id("q").Dot("Condition").Dot(m).Call(col, jen.Id("v"))
	}
	f.Func().Params(jen.Id("q").Op("*").Id(q)).Id(name).Params(params...).Op("*").Id(q).Block(
		call,
		jen.Return(jen.Id("q")),
	)
}

var opNames = map[string]string{
	MethodEq:        "=",
	MethodNe:        "<>",
	MethodGt:        ">",
	MethodGe:        ">=",
	MethodLt:        "<",
	MethodLe:        "<=",
	MethodLike:      "LIKE",
	MethodLikeLeft:  "left LIKE",
	MethodLikeRight: "right LIKE",
	MethodIn:        "IN",
	MethodNotIn:     "NOT IN",
}

var unaryDocs = map[string]string{
	MethodIsNull:    "adds an IS NULL predicate on",
	MethodIsNotNull: "adds an IS NOT NULL predicate on",
	MethodAsc:       "orders ascending by",
	MethodDesc:      "orders descending by",
}

// genChain shadows the Condition chain methods so they keep returning the
// typed builder.
func genChain(f *jen.File, q string) {
	recv := jen.Id("q").Op("*").Id(q)

	f.Comment("SetPageInfo sets 1-indexed pagination.")
	f.Func().Params(recv).Id("SetPageInfo").Params(jen.List(jen.Id("page"), jen.Id("size")).Int()).Op("*").Id(q).Block(
		jen.Id("q").Dot("Condition").Dot("SetPageInfo").Call(jen.Id("page"), jen.Id("size")),
		jen.Return(jen.Id("q")),
	)

	for _, m := range []string{"SetLimit", "SetOffset"} {
		f.Commentf("%s forwards to the embedded condition.", m)
		f.Func().Params(recv).Id(m).Params(jen.Id("n").Int()).Op("*").Id(q).Block(
			jen.Id("q").Dot("Condition").Dot(m).Call(jen.Id("n")),
			jen.Return(jen.Id("q")),
		)
	}

	f.Comment("Select restricts the selected columns.")
	f.Func().Params(recv).Id("Select").Params(jen.Id("keys").Op("...").Qual(queryPkg, "SelectKey")).Op("*").Id(q).Block(
		jen.Id("q").Dot("Condition").Dot("Select").Call(jen.Id("keys").Op("...")),
		jen.Return(jen.Id("q")),
	)
}
