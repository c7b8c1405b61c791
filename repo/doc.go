// Package repo is the repository facade: it resolves entity metadata,
// marshals entities through the mapper and drives a dialect.Backend.
//
//	drv, err := sql.OpenSQLite("file:app.db")
//	if err != nil {
//	    return err
//	}
//	client := repo.New(sql.NewBackend(drv))
//	users := repo.Of[User](client)
//
//	u := &User{Name: "v"}
//	if _, err := users.Insert(ctx, u); err != nil {
//	    return err
//	}
//	// u.ID holds the generated id.
//	found, err := users.FindOne(ctx, NewUserQuery().NameEq("v"))
//
// Generated ids are written back into the id field of entities that were
// inserted without one. Delete issues a soft delete on tables that enable
// logic deletion, and reads skip soft-deleted rows.
package repo
