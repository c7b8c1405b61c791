// Package metadata extracts table metadata from entity declarations and
// caches it per entity type for the life of the process.
//
// An entity declares its table either by implementing schema.Entity or
// through Register. Get builds the metadata on first use under a lock scoped
// to the entity type; later calls are lock-free reads of the same *Table.
package metadata
