package gen

import (
	"context"
	"flag"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/dynrepo/compiler/gen/internal/testmodel"
	"github.com/syssam/dynrepo/metadata"
)

var update = flag.Bool("update", false, "rewrite the golden files")

func userEntity() *Entity {
	return &Entity{
		Name:          "User",
		PkgPath:       "example.com/app/model",
		Table:         "user",
		FeatureColumn: "feature",
		Fields: []Field{
			{Name: "ID", Column: "id", Type: TypeRef{Expr: "int64"}, Query: true},
			{Name: "Name", Column: "name", Type: TypeRef{Expr: "string"}, Query: true},
			{Name: "Birthday", Column: "birthday", Type: TypeRef{Expr: "*time.Time", Imports: map[string]string{"time": "time"}}, Query: true},
			{Name: "Status", Column: "status", Type: TypeRef{Expr: "Status", Kind: reflect.String}, Query: true},
			{Name: "Address", Column: "address", Type: TypeRef{Expr: "string"}},
		},
	}
}

func articleEntity() *Entity {
	return &Entity{
		Name:          "Article",
		PkgPath:       "example.com/app/model",
		Table:         "article",
		FeatureColumn: "feature",
		Fields: []Field{
			{Name: "ID", Column: "id", Type: TypeRef{Expr: "uint32"}, Query: true},
			{Name: "Title", Column: "title", Type: TypeRef{Expr: "string"}, Query: true},
		},
	}
}

func newGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

// methods returns the methods declared on recv, by name.
func methods(f *ast.File, recv string) map[string]*ast.FuncDecl {
	m := make(map[string]*ast.FuncDecl)
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Recv == nil {
			continue
		}
		star, ok := fn.Recv.List[0].Type.(*ast.StarExpr)
		if !ok {
			continue
		}
		if id, ok := star.X.(*ast.Ident); ok && id.Name == recv {
			m[fn.Name.Name] = fn
		}
	}
	return m
}

// consts returns the string constants declared in f.
func consts(t *testing.T, f *ast.File) map[string]string {
	t.Helper()
	m := make(map[string]string)
	for _, d := range f.Decls {
		gd, ok := d.(*ast.GenDecl)
		if !ok || gd.Tok != token.CONST {
			continue
		}
		for _, s := range gd.Specs {
			vs := s.(*ast.ValueSpec)
			v, err := strconv.Unquote(vs.Values[0].(*ast.BasicLit).Value)
			require.NoError(t, err)
			m[vs.Names[0].Name] = v
		}
	}
	return m
}

func TestRender(t *testing.T) {
	src, err := newGenerator(t).Render(userEntity())
	require.NoError(t, err)

	out := string(src)
	assert.True(t, strings.HasPrefix(out, "// Code generated by drgen. DO NOT EDIT.\n"))
	assert.Contains(t, out, "\npackage model\n")
	assert.Contains(t, out, `"github.com/syssam/dynrepo/query"`)
	assert.Contains(t, out, `"time"`)
	assert.Contains(t, out, "return &UserQuery{Condition: query.For[User]()}")
	assert.Contains(t, out, "func (q *UserQuery) IDGt(v int64) *UserQuery {")
	assert.Contains(t, out, "func (q *UserQuery) IDIn(vs ...int64) *UserQuery {")
	assert.Contains(t, out, "func (q *UserQuery) BirthdayEq(v time.Time) *UserQuery {")
	assert.Contains(t, out, "func (q *UserQuery) StatusLike(v Status) *UserQuery {")
	assert.Contains(t, out, `q.Condition.LikeLeft("name", v)`)
	assert.Contains(t, out, `q.Condition.NotIn("birthday", vs)`)
	assert.Contains(t, out, `q.Condition.Desc("id")`)
	assert.Contains(t, out, "func (q *UserQuery) Select(keys ...query.SelectKey) *UserQuery {")

	f, err := parser.ParseFile(token.NewFileSet(), "user_query.go", src, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "model", f.Name.Name)

	assert.Equal(t, map[string]string{
		"UserSelectID":       "id",
		"UserSelectName":     "name",
		"UserSelectBirthday": "birthday",
		"UserSelectStatus":   "status",
		"UserSelectAddress":  "feature",
	}, consts(t, f))

	got := methods(f, "UserQuery")
	var want []string
	for _, fd := range userEntity().Fields {
		for _, m := range Methods(fd) {
			want = append(want, fd.Name+m)
		}
	}
	want = append(want, "SetPageInfo", "SetLimit", "SetOffset", "Select")
	assert.Len(t, got, len(want))
	for _, name := range want {
		assert.Contains(t, got, name)
	}
	for name := range got {
		assert.False(t, strings.HasPrefix(name, "Address"), name)
	}
	assert.NotContains(t, got, "BirthdayGt")
	assert.NotContains(t, got, "BirthdayLike")
	assert.NotContains(t, got, "IDLike")
}

// TestRenderGolden compares the output for testmodel.Tag with the golden
// file and with the copy committed into the testmodel package, which the
// module build compiles.
func TestRenderGolden(t *testing.T) {
	e, err := FromMetadata(metadata.MustGet(reflect.TypeFor[testmodel.Tag]()))
	require.NoError(t, err)
	src, err := newGenerator(t).Render(e)
	require.NoError(t, err)

	golden := filepath.Join("testdata", "tag_query.golden")
	compiled := filepath.Join("internal", "testmodel", e.FileName())
	if *update {
		require.NoError(t, os.WriteFile(golden, src, 0o644))
		require.NoError(t, os.WriteFile(compiled, src, 0o644))
	}
	for _, p := range []string{golden, compiled} {
		want, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(src), "%s is stale: run go test -run TestRenderGolden -update", p)
	}
}

func TestRenderHeader(t *testing.T) {
	src, err := newGenerator(t, WithHeader("Code generated by make gen. DO NOT EDIT.")).Render(articleEntity())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "// Code generated by make gen. DO NOT EDIT.\n"))

	src, err = newGenerator(t, WithHeader("")).Render(articleEntity())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "package model"))
}

func TestRenderNoFields(t *testing.T) {
	e := articleEntity()
	e.Fields = nil
	src, err := newGenerator(t).Render(e)
	require.NoError(t, err)
	f, err := parser.ParseFile(token.NewFileSet(), "", src, 0)
	require.NoError(t, err)
	assert.Empty(t, consts(t, f))
	assert.Len(t, methods(f, "ArticleQuery"), 4)
}

func TestRenderDeterministic(t *testing.T) {
	g := newGenerator(t)
	first, err := g.Render(userEntity())
	require.NoError(t, err)
	for range 5 {
		again, err := g.Render(userEntity())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	g := newGenerator(t, WithTarget(dir), WithWorkers(2))

	paths, err := g.Generate(context.Background(), userEntity(), articleEntity())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "article_query.go"),
		filepath.Join(dir, "user_query.go"),
	}, paths)

	for _, p := range paths {
		src, err := os.ReadFile(p)
		require.NoError(t, err)
		_, err = parser.ParseFile(token.NewFileSet(), p, src, 0)
		require.NoError(t, err)
	}

	before, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), articleEntity(), userEntity())
	require.NoError(t, err)
	after, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rendered, err := g.Render(userEntity())
	require.NoError(t, err)
	assert.Equal(t, rendered, after)
}

func TestGenerateMalformed(t *testing.T) {
	tests := []struct {
		name     string
		entities func() []*Entity
		config   bool
	}{
		{
			name: "InvalidField",
			entities: func() []*Entity {
				bad := articleEntity()
				bad.Fields[1].Name = "title-x"
				return []*Entity{userEntity(), bad}
			},
		},
		{
			name: "BadType",
			entities: func() []*Entity {
				bad := articleEntity()
				bad.Fields[1].Type.Expr = "[]"
				return []*Entity{userEntity(), bad}
			},
		},
		{
			name: "Nil",
			entities: func() []*Entity {
				return []*Entity{userEntity(), nil}
			},
		},
		{
			name: "Duplicate",
			entities: func() []*Entity {
				return []*Entity{userEntity(), userEntity()}
			},
		},
		{
			name: "MixedPackages",
			entities: func() []*Entity {
				other := articleEntity()
				other.PkgPath = "example.com/app/blog"
				return []*Entity{userEntity(), other}
			},
			config: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			paths, err := newGenerator(t, WithTarget(dir)).Generate(context.Background(), tt.entities()...)
			require.Error(t, err)
			assert.Nil(t, paths)
			if tt.config {
				assert.True(t, IsConfigError(err), err)
			} else {
				assert.True(t, IsSchemaError(err), err)
			}
			_, statErr := os.Stat(dir)
			assert.True(t, os.IsNotExist(statErr), "nothing is written on malformed input")
		})
	}
}

func TestGenerateRequiresTarget(t *testing.T) {
	_, err := newGenerator(t).Generate(context.Background(), userEntity())
	assert.True(t, IsConfigError(err))
}

func TestGenerateWriteError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := newGenerator(t, WithTarget(file)).Generate(context.Background(), userEntity())
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newGenerator(t, WithTarget(t.TempDir())).Generate(ctx, userEntity())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dir := t.TempDir()
	_, err := newGenerator(t, WithTarget(dir), WithLogger(zap.New(core))).
		Generate(context.Background(), userEntity(), articleEntity())
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("wrote query builder").Len())
	done := logs.FilterMessage("generated query builders").All()
	require.Len(t, done, 1)
	assert.Equal(t, int64(2), done[0].ContextMap()["files"])
	assert.Equal(t, dir, done[0].ContextMap()["target"])
}
