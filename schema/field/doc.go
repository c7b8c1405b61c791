// Package field provides fluent builders for declaring how the fields of an
// entity struct map to table columns.
//
// Fields are referenced by their Go struct field name. Column names default
// to the snake_case form of that name:
//
//	field.Column("LastLoginTime")             // column: last_login_time
//	field.Column("Name").Named("user_name")   // column: user_name
//
// # Kinds
//
// A declared field is one of:
//
//	field.Column("Name")                  // direct, queryable column
//	field.Column("Address").NoQuery()     // packed into the feature column under "address"
//	field.Feature("Nickname").Named("nk") // packed into the feature column under "nk"
//	field.Ignore("Cache")                 // never mapped
//
// Exported struct fields that are not declared at all are packed into the
// feature column under their Go field name.
//
// # Conflict handling
//
// Direct columns are overwritten when an upsert collides with a unique key,
// unless SkipOnConflict is set:
//
//	field.Column("Source").SkipOnConflict()
//
// # Converters
//
// Values pass through convert.Default unless another converter is declared:
//
//	field.Column("Tags").Converter(convert.Of[convert.JSON]())
package field
