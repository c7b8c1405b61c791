package mixin_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynrepo/metadata"
	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
	"github.com/syssam/dynrepo/schema/mixin"
)

func TestSchemaBaseMixin(t *testing.T) {
	m := mixin.Schema{}
	assert.Nil(t, m.Fields())

	d := schema.Table("t").Mixin(m).Descriptor()
	require.NoError(t, d.Err)
	assert.Empty(t, d.Fields)
	assert.False(t, d.LogicDelete)
}

func TestTime(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		d := schema.Table("t").Mixin(mixin.Time{}).Descriptor()
		require.NoError(t, d.Err)
		require.Len(t, d.Fields, 2)
		assert.Equal(t, "CreatedTime", d.Fields[0].Name)
		assert.Equal(t, "created_time", d.Fields[0].Column)
		assert.Equal(t, "UpdatedTime", d.Fields[1].Name)
		assert.Equal(t, "updated_time", d.Fields[1].Column)
		assert.Equal(t, schema.DefaultCreatedAtColumn, d.CreatedAtColumn)
		assert.Equal(t, schema.DefaultUpdatedAtColumn, d.UpdatedAtColumn)
	})

	t.Run("Renamed", func(t *testing.T) {
		d := schema.Table("t").Mixin(mixin.Time{Created: "GmtCreate", Updated: "GmtModified"}).Descriptor()
		require.NoError(t, d.Err)
		assert.Equal(t, "gmt_create", d.CreatedAtColumn)
		assert.Equal(t, "gmt_modified", d.UpdatedAtColumn)
		assert.Equal(t, "gmt_create", d.Fields[0].Column)
	})

	t.Run("Single", func(t *testing.T) {
		d := schema.Table("t").Mixin(mixin.CreateTime{}).Descriptor()
		require.Len(t, d.Fields, 1)
		assert.Equal(t, "CreatedTime", d.Fields[0].Name)

		d = schema.Table("t").Mixin(mixin.UpdateTime{Field: "Touched"}).Descriptor()
		require.Len(t, d.Fields, 1)
		assert.Equal(t, "touched", d.UpdatedAtColumn)
		assert.Equal(t, schema.DefaultCreatedAtColumn, d.CreatedAtColumn)
	})

	t.Run("InvalidField", func(t *testing.T) {
		d := schema.Table("t").Mixin(mixin.CreateTime{Field: "created"}).Descriptor()
		require.NoError(t, d.Err)
		require.Len(t, d.Fields, 1)
		assert.Error(t, d.Fields[0].Err)
	})
}

func TestSoftDelete(t *testing.T) {
	d := schema.Table("t").Mixin(mixin.SoftDelete{}).Descriptor()
	require.NoError(t, d.Err)
	assert.True(t, d.LogicDelete)
	assert.Empty(t, d.Fields)

	d = schema.Table("t").Mixin(mixin.TimeSoftDelete{}).Descriptor()
	assert.True(t, d.LogicDelete)
	assert.Len(t, d.Fields, 2)
}

type audit struct {
	mixin.Schema
}

func (audit) Fields() []schema.Field {
	return []schema.Field{field.Column("CreatedBy"), field.Feature("Trace")}
}

func TestNoQuery(t *testing.T) {
	d := schema.Table("t").Mixin(mixin.NoQuery(audit{})).Descriptor()
	require.NoError(t, d.Err)
	require.Len(t, d.Fields, 2)
	assert.False(t, d.Fields[0].Query)
	assert.False(t, d.Fields[0].Direct())
	assert.Equal(t, field.KindFeature, d.Fields[1].Kind)
}

func TestNilMixin(t *testing.T) {
	d := schema.Table("t").Mixin(nil).Descriptor()
	assert.ErrorContains(t, d.Err, "nil mixin")
}

type order struct {
	ID          int64
	Amount      int64
	CreatedBy   string
	Trace       string
	GmtCreate   time.Time
	GmtModified time.Time
}

func (order) Table() *schema.TableBuilder {
	return schema.Table("orders").
		Mixin(
			mixin.Time{Created: "GmtCreate", Updated: "GmtModified"},
			mixin.SoftDelete{},
			mixin.NoQuery(audit{}),
		).
		Fields(field.Column("ID"), field.Column("Amount"))
}

func TestMixinMetadata(t *testing.T) {
	meta, err := metadata.Get(reflect.TypeFor[order]())
	require.NoError(t, err)
	assert.Equal(t, "gmt_create", meta.CreatedAtColumn)
	assert.Equal(t, "gmt_modified", meta.UpdatedAtColumn)
	assert.True(t, meta.LogicDelete)
	assert.Contains(t, meta.Columns, "gmt_create")
	assert.Contains(t, meta.Columns, "gmt_modified")
	assert.Contains(t, meta.Columns, "amount")
	assert.NotContains(t, meta.Columns, "created_by")
	assert.Contains(t, meta.SideChannel, "created_by")
	assert.Contains(t, meta.SideChannel, "Trace")
}
