package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
)

func TestTableDefaults(t *testing.T) {
	d := schema.Table("user_test").Descriptor()
	require.NoError(t, d.Err)
	assert.Equal(t, "user_test", d.Name)
	assert.Equal(t, "id", d.IDColumn)
	assert.Equal(t, "feature", d.FeatureColumn)
	assert.Equal(t, "created_time", d.CreatedAtColumn)
	assert.Equal(t, "updated_time", d.UpdatedAtColumn)
	assert.False(t, d.LogicDelete)
	assert.False(t, d.UpdateCreatedAtOnConflict)
	assert.Empty(t, d.Fields)
}

func TestTableOptions(t *testing.T) {
	d := schema.Table("orders").
		IDColumn("order_id").
		FeatureColumn("ext").
		CreatedAtColumn("gmt_create").
		UpdatedAtColumn("gmt_modified").
		LogicDelete().
		UpdateCreatedAtOnConflict().
		Fields(
			field.Column("OrderID").Named("order_id"),
			field.Feature("Note"),
		).
		Descriptor()
	require.NoError(t, d.Err)
	assert.Equal(t, "order_id", d.IDColumn)
	assert.Equal(t, "ext", d.FeatureColumn)
	assert.Equal(t, "gmt_create", d.CreatedAtColumn)
	assert.Equal(t, "gmt_modified", d.UpdatedAtColumn)
	assert.True(t, d.LogicDelete)
	assert.True(t, d.UpdateCreatedAtOnConflict)
	require.Len(t, d.Fields, 2)
	assert.Equal(t, "OrderID", d.Fields[0].Name)
	assert.Equal(t, field.KindFeature, d.Fields[1].Kind)
}

func TestTableErrors(t *testing.T) {
	t.Run("EmptyName", func(t *testing.T) {
		assert.Error(t, schema.Table("").Descriptor().Err)
	})

	t.Run("EmptyColumn", func(t *testing.T) {
		assert.Error(t, schema.Table("t").FeatureColumn("").Descriptor().Err)
	})

	t.Run("NilField", func(t *testing.T) {
		d := schema.Table("t").Fields(nil).Descriptor()
		assert.Error(t, d.Err)
	})
}
