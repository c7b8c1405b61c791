// Package testmodel holds an entity whose committed query builder is
// compared against the generator output. Regenerate it with
// go test ./compiler/gen -run TestRenderGolden -update.
package testmodel

import (
	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
)

// Level is a named string type.
type Level string

// Tag is a labelled entity.
type Tag struct {
	ID    int64
	Label string
	Level Level
	Note  string
}

func (Tag) Table() *schema.TableBuilder {
	return schema.Table("tag").Fields(
		field.Column("ID"),
		field.Column("Label"),
		field.Column("Level"),
		field.Column("Note").NoQuery(),
	)
}
