package testmodel_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/dynrepo/compiler/gen/internal/testmodel"
	"github.com/syssam/dynrepo/query"
)

func TestTagQuery(t *testing.T) {
	q := testmodel.NewTagQuery().
		IDIn(1, 2).
		LabelLikeRight("go").
		LevelEq("high").
		IDDesc().
		SetPageInfo(2, 10).
		Select(testmodel.TagSelectID, testmodel.TagSelectNote)

	var b query.Builder = q
	c := b.Cond()
	assert.Equal(t, reflect.TypeFor[testmodel.Tag](), c.Entity())
	assert.Equal(t, []query.Predicate{
		{Field: "id", Op: query.OpIn, Value: []int64{1, 2}},
		{Field: "label", Op: query.OpLike, Value: "go%"},
		{Field: "level", Op: query.OpEQ, Value: testmodel.Level("high")},
	}, c.Predicates())
	assert.Equal(t, []query.Order{{Field: "id", Direction: query.Descending}}, c.Orders())
	limit, _ := c.Limit()
	offset, _ := c.Offset()
	assert.Equal(t, 10, limit)
	assert.Equal(t, 10, offset)
	assert.Equal(t, []string{"id", "feature"}, c.SelectColumns())
}
