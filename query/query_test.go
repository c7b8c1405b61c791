package query_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynrepo/query"
)

type User struct {
	ID   int64
	Name string
}

func TestChaining(t *testing.T) {
	c := query.For[User]()
	assert.Same(t, c, c.Eq("name", "a"))
	assert.Same(t, c, c.Desc("id"))
	assert.Same(t, c, c.SetPageInfo(1, 10))
	assert.Same(t, c, c.Select("id"))
	assert.Same(t, c, c.Cond())
	assert.Equal(t, reflect.TypeFor[User](), c.Entity())
	assert.Equal(t, reflect.TypeFor[User](), query.New(reflect.TypeFor[*User]()).Entity())
}

func TestPredicates(t *testing.T) {
	c := query.For[User]().
		Eq("name", "a").
		Ne("name", "b").
		Gt("age", 1).
		Ge("age", 2).
		Lt("age", 3).
		Le("age", 4).
		In("id", []int64{1, 2}).
		NotIn("id", []int64{3}).
		Like("name", "li").
		LikeLeft("name", "ce").
		LikeRight("name", "al").
		IsNull("email").
		IsNotNull("phone").
		Eq("name", "a")

	want := []query.Predicate{
		{Field: "name", Op: query.OpEQ, Value: "a"},
		{Field: "name", Op: query.OpNEQ, Value: "b"},
		{Field: "age", Op: query.OpGT, Value: 1},
		{Field: "age", Op: query.OpGTE, Value: 2},
		{Field: "age", Op: query.OpLT, Value: 3},
		{Field: "age", Op: query.OpLTE, Value: 4},
		{Field: "id", Op: query.OpIn, Value: []int64{1, 2}},
		{Field: "id", Op: query.OpNotIn, Value: []int64{3}},
		{Field: "name", Op: query.OpLike, Value: "%li%"},
		{Field: "name", Op: query.OpLike, Value: "%ce"},
		{Field: "name", Op: query.OpLike, Value: "al%"},
		{Field: "email", Op: query.OpIsNull},
		{Field: "phone", Op: query.OpNotNull},
		{Field: "name", Op: query.OpEQ, Value: "a"},
	}
	assert.Equal(t, want, c.Predicates())
}

func TestOperators(t *testing.T) {
	for _, op := range []query.Op{
		query.OpEQ, query.OpNEQ, query.OpGT, query.OpGTE, query.OpLT, query.OpLTE,
		query.OpIn, query.OpNotIn, query.OpLike, query.OpIsNull, query.OpNotNull,
	} {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, query.Op("~").Valid())
	assert.True(t, query.OpIsNull.Unary())
	assert.False(t, query.OpEQ.Unary())
	assert.True(t, query.OpNotIn.Multi())
	assert.Equal(t, "NOT IN", query.OpNotIn.String())
}

func TestOrders(t *testing.T) {
	c := query.For[User]().Desc("created_time").Asc("id").AddOrder("name", query.Descending)
	assert.Equal(t, []query.Order{
		{Field: "created_time", Direction: query.Descending},
		{Field: "id", Direction: query.Ascending},
		{Field: "name", Direction: query.Descending},
	}, c.Orders())
}

func TestSetPageInfo(t *testing.T) {
	tests := []struct {
		page, size    int
		offset, limit int
	}{
		{1, 20, 0, 20},
		{3, 20, 40, 20},
		{2, 5, 5, 5},
		{0, 10, -10, 10},
	}
	for _, tt := range tests {
		c := query.For[User]().SetPageInfo(tt.page, tt.size)
		offset, ok := c.Offset()
		require.True(t, ok)
		limit, ok := c.Limit()
		require.True(t, ok)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.limit, limit)
	}

	c := query.For[User]()
	_, ok := c.Limit()
	assert.False(t, ok)
	_, ok = c.Offset()
	assert.False(t, ok)
	c.SetLimit(1)
	n, ok := c.Limit()
	assert.True(t, ok)
	assert.Equal(t, 1, n)
}

func TestSelect(t *testing.T) {
	c := query.For[User]()
	assert.True(t, c.SelectAll())
	assert.Empty(t, c.SelectColumns())

	c.Select("name", "id").Select("name", "email", "id")
	assert.False(t, c.SelectAll())
	assert.Equal(t, []string{"name", "id", "email"}, c.SelectColumns())
}

func TestString(t *testing.T) {
	c := query.For[User]().
		Select("id", "name").
		Eq("name", "a").
		IsNull("email").
		Desc("id").
		SetPageInfo(2, 10)
	assert.Equal(t, "select id, name where name = a and email IS NULL order by id desc limit 10 offset 10", c.String())
	assert.Equal(t, "select *", query.For[User]().String())
}
