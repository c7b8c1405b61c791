// Package mapper converts entities to rows and rows back to entities using
// the table metadata of the entity type and the converters of its fields.
//
// Writes are best effort: a field that cannot be read is logged and left out
// of the row. Reads are strict: an entity is either fully populated or not
// returned at all.
package mapper
