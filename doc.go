// Package dynrepo binds Go structs to relational table rows without
// hand-written SQL per entity.
//
// An entity type declares its table once, either by implementing
// schema.Entity or through metadata.Register:
//
//	type User struct {
//	    ID       int64
//	    Name     string
//	    Address  string
//	    Nickname string // packed into the feature column
//	}
//
//	func (User) Table() *schema.TableBuilder {
//	    return schema.Table("user").Fields(
//	        field.Column("ID"),
//	        field.Column("Name"),
//	        field.Column("Address").NoQuery(),
//	    )
//	}
//
// The metadata package turns the declaration into a cached TableMetadata,
// the mapper package converts entities to and from Row values, the query
// package accumulates filter, order, pagination and select state, and the
// repo package drives a dialect.Backend with both. Typed query builders
// such as UserQuery are produced offline by compiler/gen (see cmd/drgen).
//
// # Sub-packages
//
//   - schema, schema/field: declarative table configuration
//   - convert: converter protocol and registry
//   - metadata: metadata extraction and caching
//   - mapper: entity to row marshalling
//   - query: query condition model
//   - repo: repository facade
//   - dialect, dialect/sql: backend contract and database/sql backend
//   - compiler/gen, compiler/load: query surface generator
package dynrepo

// Row is a single table row keyed by column name. It is what the mapper
// produces for writes and what a backend returns for reads.
type Row = map[string]any
