// Package gen renders typed query builders for entity types.
//
// For every entity it emits one <entity>_query.go file in the entity's own
// package, holding a selector constant per field and a <Entity>Query type
// that embeds *query.Condition:
//
//	q := model.NewUserQuery().NameLikeRight("al").AgeGe(18).IDDesc().SetLimit(10)
//	users, err := repo.Of[model.User](client).Find(ctx, q)
//
// Which condition methods a field receives depends only on its type class
// and query flag (see Methods). Fields packed into the feature column get a
// selector constant and nothing else.
//
// Input comes from FromMetadata, for entities registered with the metadata
// package, or from compiler/load, for YAML declarations. Render is pure;
// Generate validates and renders every entity before it writes any file.
package gen
