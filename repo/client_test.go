package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/dialect"
	"github.com/syssam/dynrepo/mapper"
	"github.com/syssam/dynrepo/query"
	"github.com/syssam/dynrepo/repo"
	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
)

type Tag struct {
	ID          uint32
	Label       string
	CreatedTime time.Time
	UpdatedTime time.Time
}

func (Tag) Table() *schema.TableBuilder {
	return schema.Table("tag").Fields(
		field.Column("ID"),
		field.Column("Label"),
		field.Column("CreatedTime"),
		field.Column("UpdatedTime"),
	)
}

type call struct {
	op     string
	table  string
	rows   []dynrepo.Row
	update []string
	cond   *query.Condition
	live   bool
}

// recorder is a dialect.Backend that records calls and replays canned
// results.
type recorder struct {
	calls []call
	res   dialect.Result
	rows  []dynrepo.Row
	err   error
}

func (r *recorder) record(c call) { r.calls = append(r.calls, c) }

func (r *recorder) Insert(_ context.Context, table string, row dynrepo.Row) (dialect.Result, error) {
	r.record(call{op: "insert", table: table, rows: []dynrepo.Row{row}})
	return r.res, r.err
}

func (r *recorder) Upsert(_ context.Context, table string, row dynrepo.Row, update []string) (dialect.Result, error) {
	r.record(call{op: "upsert", table: table, rows: []dynrepo.Row{row}, update: update})
	return r.res, r.err
}

func (r *recorder) BatchInsert(_ context.Context, table string, rows []dynrepo.Row) (dialect.Result, error) {
	r.record(call{op: "batch insert", table: table, rows: rows})
	return r.res, r.err
}

func (r *recorder) BatchUpsert(_ context.Context, table string, rows []dynrepo.Row, update []string) (dialect.Result, error) {
	r.record(call{op: "batch upsert", table: table, rows: rows, update: update})
	return r.res, r.err
}

func (r *recorder) Update(_ context.Context, table string, row dynrepo.Row, cond *query.Condition, live bool) (int64, error) {
	r.record(call{op: "update", table: table, rows: []dynrepo.Row{row}, cond: cond, live: live})
	return r.res.Affected, r.err
}

func (r *recorder) Delete(_ context.Context, table string, cond *query.Condition) (int64, error) {
	r.record(call{op: "delete", table: table, cond: cond})
	return r.res.Affected, r.err
}

func (r *recorder) LogicDelete(_ context.Context, table string, cond *query.Condition) (int64, error) {
	r.record(call{op: "logic delete", table: table, cond: cond})
	return r.res.Affected, r.err
}

func (r *recorder) Find(_ context.Context, table string, cond *query.Condition, live bool) ([]dynrepo.Row, error) {
	r.record(call{op: "find", table: table, cond: cond, live: live})
	return r.rows, r.err
}

func (r *recorder) Count(_ context.Context, table string, cond *query.Condition, live bool) (int64, error) {
	r.record(call{op: "count", table: table, cond: cond, live: live})
	return int64(len(r.rows)), r.err
}

var (
	_     dialect.Backend = (*recorder)(nil)
	clock                 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

func newClient(b dialect.Backend, opts ...repo.Option) *repo.Client {
	opts = append([]repo.Option{repo.WithMarshaller(mapper.New(mapper.WithClock(func() time.Time { return clock })))}, opts...)
	return repo.New(b, opts...)
}

func TestClientInsertConvertsID(t *testing.T) {
	b := &recorder{res: dialect.Result{Affected: 1, IDs: []any{int64(42)}}}
	tag := &Tag{Label: "go"}
	n, err := newClient(b).Insert(context.Background(), tag)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, uint32(42), tag.ID)

	require.Len(t, b.calls, 1)
	assert.Equal(t, "tag", b.calls[0].table)
	assert.Equal(t, dynrepo.Row{"label": "go", "created_time": clock, "updated_time": clock}, b.calls[0].rows[0])
}

func TestClientInsertKeepsExplicitID(t *testing.T) {
	b := &recorder{res: dialect.Result{Affected: 1, IDs: []any{int64(42)}}}
	tag := &Tag{ID: 7, Label: "go"}
	_, err := newClient(b).Insert(context.Background(), tag)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), tag.ID)
}

func TestClientInsertByValue(t *testing.T) {
	b := &recorder{res: dialect.Result{Affected: 1, IDs: []any{int64(42)}}}
	_, err := newClient(b).Insert(context.Background(), Tag{Label: "go"})
	require.NoError(t, err)
	assert.Len(t, b.calls, 1)
}

func TestClientUpsert(t *testing.T) {
	b := &recorder{res: dialect.Result{Affected: 1}}
	_, err := newClient(b).Upsert(context.Background(), &Tag{ID: 3, Label: "go"})
	require.NoError(t, err)
	require.Len(t, b.calls, 1)
	assert.Equal(t, "upsert", b.calls[0].op)
	assert.Equal(t, []string{"id", "label", "updated_time"}, b.calls[0].update)
}

func TestClientBatch(t *testing.T) {
	ctx := context.Background()
	t.Run("WritesBackIDs", func(t *testing.T) {
		b := &recorder{res: dialect.Result{Affected: 2, IDs: []any{int64(5), int64(6)}}}
		tags := []Tag{{Label: "a"}, {Label: "b"}}
		n, err := newClient(b).BatchInsert(ctx, tags)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, uint32(5), tags[0].ID)
		assert.Equal(t, uint32(6), tags[1].ID)
	})
	t.Run("SkipsWriteBackWithExplicitIDs", func(t *testing.T) {
		b := &recorder{res: dialect.Result{Affected: 2, IDs: []any{int64(5), int64(6)}}}
		tags := []*Tag{{ID: 1, Label: "a"}, {Label: "b"}}
		_, err := newClient(b).BatchInsert(ctx, tags)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), tags[0].ID)
		assert.Zero(t, tags[1].ID)
	})
	t.Run("UpsertDoesNotWriteBack", func(t *testing.T) {
		b := &recorder{res: dialect.Result{Affected: 1, IDs: []any{int64(5)}}}
		tags := []*Tag{{Label: "a"}}
		_, err := newClient(b).BatchUpsert(ctx, tags)
		require.NoError(t, err)
		assert.Zero(t, tags[0].ID)
		assert.Equal(t, "batch upsert", b.calls[0].op)
	})
	t.Run("Empty", func(t *testing.T) {
		b := &recorder{}
		n, err := newClient(b).BatchInsert(ctx, []*Tag{})
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = newClient(b).BatchUpsert(ctx, []Tag(nil))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, b.calls)
	})
	t.Run("NotASlice", func(t *testing.T) {
		_, err := newClient(&recorder{}).BatchInsert(ctx, &Tag{})
		assert.True(t, dynrepo.IsConfigError(err))
	})
}

func TestClientUpdate(t *testing.T) {
	b := &recorder{res: dialect.Result{Affected: 3}}
	cond := query.For[Tag]().Eq("label", "a")
	n, err := newClient(b).Update(context.Background(), &Tag{Label: "b"}, cond)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, b.calls, 1)
	assert.Same(t, cond, b.calls[0].cond)
	assert.False(t, b.calls[0].live)
	assert.Equal(t, dynrepo.Row{"label": "b", "updated_time": clock}, b.calls[0].rows[0])

	_, err = newClient(b).Update(context.Background(), &Tag{}, query.For[User]())
	assert.True(t, dynrepo.IsConfigError(err))
}

func TestClientDeleteSwitchesOnLogicDelete(t *testing.T) {
	ctx := context.Background()
	b := &recorder{}
	c := newClient(b)
	_, err := c.Delete(ctx, query.For[Tag]())
	require.NoError(t, err)
	_, err = c.Delete(ctx, query.For[Article]())
	require.NoError(t, err)
	require.Len(t, b.calls, 2)
	assert.Equal(t, "delete", b.calls[0].op)
	assert.Equal(t, "logic delete", b.calls[1].op)
	assert.Equal(t, "article", b.calls[1].table)
}

func TestClientFindOne(t *testing.T) {
	ctx := context.Background()
	b := &recorder{rows: []dynrepo.Row{{"id": int64(9), "label": "a"}}}
	cond := query.For[Tag]()
	e, err := newClient(b).FindOne(ctx, cond)
	require.NoError(t, err)
	assert.Equal(t, &Tag{ID: 9, Label: "a"}, e)
	limit, ok := cond.Limit()
	assert.True(t, ok)
	assert.Equal(t, 1, limit)

	b.rows = nil
	_, err = newClient(b).FindOne(ctx, cond)
	assert.True(t, dynrepo.IsNotFound(err))
}

func TestClientUnboundCondition(t *testing.T) {
	ctx := context.Background()
	c := newClient(&recorder{})
	_, err := c.Find(ctx, query.New(nil))
	assert.True(t, dynrepo.IsConfigError(err))
	_, err = c.Count(ctx, nil)
	assert.True(t, dynrepo.IsConfigError(err))
	var cond *query.Condition
	_, err = c.Delete(ctx, cond)
	assert.True(t, dynrepo.IsConfigError(err))
	_, err = c.Insert(ctx, (*Tag)(nil))
	assert.True(t, dynrepo.IsConfigError(err))
	_, err = c.Insert(ctx, nil)
	assert.True(t, dynrepo.IsConfigError(err))
}

func TestClientBackendError(t *testing.T) {
	ctx := context.Background()
	cause := dynrepo.NewConstraintError("duplicate key", errors.New("UNIQUE constraint failed"))
	c := newClient(&recorder{err: cause})
	_, err := c.Insert(ctx, &Tag{Label: "a"})
	assert.True(t, dynrepo.IsConstraintError(err))
	assert.ErrorContains(t, err, "repo: insert Tag")
	_, err = c.Find(ctx, query.For[Tag]())
	assert.ErrorIs(t, err, dynrepo.ErrConstraint)
	_, err = c.Count(ctx, query.For[Tag]())
	assert.ErrorIs(t, err, dynrepo.ErrConstraint)
}

func TestClientLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := repo.New(&recorder{res: dialect.Result{Affected: 1}}, repo.WithLogger(zap.New(core)))
	_, err := c.Insert(context.Background(), &Tag{Label: "a"})
	require.NoError(t, err)
	entries := logs.FilterMessage("repo: insert").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tag", entries[0].ContextMap()["table"])
}

func TestRepoRejectsForeignCondition(t *testing.T) {
	tags := repo.Of[Tag](newClient(&recorder{}))
	_, err := tags.Find(context.Background(), query.For[User]())
	assert.True(t, dynrepo.IsConfigError(err))
	_, err = tags.Count(context.Background(), tags.Query())
	assert.NoError(t, err)
}
