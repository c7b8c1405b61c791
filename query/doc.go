// Package query holds the backend-agnostic query condition model: ordered
// predicates, ordering, pagination and column selection.
//
// A Condition is built fresh for each query, usually through a generated
// typed wrapper such as UserQuery, and handed to a backend once:
//
//	q := query.For[User]().
//		Eq("name", "alice").
//		Gt("age", 18).
//		Desc("created_time").
//		SetPageInfo(1, 20)
//
// Field names are column names. Every mutator returns the receiver.
package query
