package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/dialect/sql"
	"github.com/syssam/dynrepo/query"
	"github.com/syssam/dynrepo/repo"
	"github.com/syssam/dynrepo/schema"
	"github.com/syssam/dynrepo/schema/field"
)

type User struct {
	ID            int64
	Name          string
	Birthday      time.Time
	LastLoginTime time.Time
	Address       string
	CreatedTime   time.Time
	UpdatedTime   time.Time
}

func (User) Table() *schema.TableBuilder {
	return schema.Table("user_test").Fields(
		field.Column("ID"),
		field.Column("Name"),
		field.Column("Birthday"),
		field.Column("LastLoginTime"),
		field.Column("Address").NoQuery(),
		field.Column("CreatedTime"),
		field.Column("UpdatedTime"),
	)
}

type Article struct {
	ID          int64
	Title       string
	CreatedTime time.Time
	UpdatedTime time.Time
}

func (Article) Table() *schema.TableBuilder {
	return schema.Table("article").LogicDelete().Fields(
		field.Column("ID"),
		field.Column("Title"),
		field.Column("CreatedTime"),
		field.Column("UpdatedTime"),
	)
}

var ddl = []string{`CREATE TABLE "user_test" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"name" TEXT NOT NULL,
	"birthday" DATETIME,
	"last_login_time" DATETIME,
	"feature" TEXT,
	"created_time" DATETIME,
	"updated_time" DATETIME
)`, `CREATE TABLE "article" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"title" TEXT NOT NULL,
	"deleted" INTEGER NOT NULL DEFAULT 0,
	"deleted_time" DATETIME,
	"created_time" DATETIME,
	"updated_time" DATETIME
)`}

func open(t *testing.T) (*repo.Repo[User], context.Context) {
	t.Helper()
	ctx := context.Background()
	drv, err := sql.OpenSQLite(":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	for _, stmt := range ddl {
		require.NoError(t, drv.Exec(ctx, stmt, []any{}, nil))
	}
	return repo.Of[User](repo.New(sql.NewBackend(drv))), ctx
}

func byName(name string) *query.Condition {
	return query.For[User]().Eq("name", name)
}

func byID(id int64) *query.Condition {
	return query.For[User]().Eq("id", id)
}

func TestInsertAndFindOne(t *testing.T) {
	users, ctx := open(t)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	u := &User{Name: "v", Birthday: today, LastLoginTime: now, Address: "Pompeii"}
	n, err := users.Insert(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := users.FindOne(ctx, byName("v"))
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "v", found.Name)
	assert.True(t, today.Equal(found.Birthday), "birthday %v", found.Birthday)
	assert.WithinDuration(t, now, found.LastLoginTime, time.Microsecond)
	assert.Equal(t, "Pompeii", found.Address)
	assert.False(t, found.CreatedTime.IsZero())
	assert.False(t, found.UpdatedTime.IsZero())
}

func TestInsertWritesBackID(t *testing.T) {
	users, ctx := open(t)
	u := &User{Name: "test_insert"}
	_, err := users.Insert(ctx, u)
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	found, err := users.FindOne(ctx, byID(u.ID))
	require.NoError(t, err)
	assert.Equal(t, u.Name, found.Name)
}

func TestUpsert(t *testing.T) {
	users, ctx := open(t)
	u := &User{Name: "new_user"}
	_, err := users.Upsert(ctx, u)
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	found, err := users.FindOne(ctx, byID(u.ID))
	require.NoError(t, err)
	assert.Equal(t, "new_user", found.Name)

	u.Name = "renamed"
	_, err = users.Upsert(ctx, u)
	require.NoError(t, err)
	found, err = users.FindOne(ctx, byID(u.ID))
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Name)

	count, err := users.Count(ctx, query.For[User]())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBatchInsert(t *testing.T) {
	users, ctx := open(t)
	batch := make([]*User, 5)
	for i := range batch {
		batch[i] = &User{Name: fmt.Sprintf("user_%d", i)}
	}
	n, err := users.BatchInsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	for _, u := range batch {
		require.NotZero(t, u.ID)
		found, err := users.FindOne(ctx, byName(u.Name))
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)
	}
}

func TestBatchUpsertMixed(t *testing.T) {
	users, ctx := open(t)
	_, err := users.BatchInsert(ctx, []*User{{Name: "a"}, {Name: "b"}, {Name: "c"}})
	require.NoError(t, err)

	existing, err := users.Find(ctx, query.For[User]().SetLimit(2))
	require.NoError(t, err)
	require.Len(t, existing, 2)
	for _, u := range existing {
		u.Name = "updated_by_batch"
	}
	fresh := []*User{{Name: "new_user_0"}, {Name: "new_user_1"}, {Name: "new_user_2"}}
	_, err = users.BatchUpsert(ctx, append(existing, fresh...))
	require.NoError(t, err)

	for _, u := range existing {
		found, err := users.FindOne(ctx, byID(u.ID))
		require.NoError(t, err)
		assert.Equal(t, "updated_by_batch", found.Name)
	}
	for _, u := range fresh {
		_, err := users.FindOne(ctx, byName(u.Name))
		require.NoError(t, err)
	}
	count, err := users.Count(ctx, query.For[User]())
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestUpdateWithCondition(t *testing.T) {
	users, ctx := open(t)
	u1, u2 := &User{Name: "before_update_1"}, &User{Name: "before_update_2"}
	_, err := users.Insert(ctx, u1)
	require.NoError(t, err)
	_, err = users.Insert(ctx, u2)
	require.NoError(t, err)

	n, err := users.Update(ctx, &User{Name: "after_update"}, byID(u1.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	check1, err := users.FindOne(ctx, byID(u1.ID))
	require.NoError(t, err)
	check2, err := users.FindOne(ctx, byID(u2.ID))
	require.NoError(t, err)
	assert.Equal(t, "after_update", check1.Name)
	assert.Equal(t, "before_update_2", check2.Name)
}

func TestDeleteWithCondition(t *testing.T) {
	users, ctx := open(t)
	u1, u2 := &User{Name: "to_delete"}, &User{Name: "keep"}
	_, err := users.Insert(ctx, u1)
	require.NoError(t, err)
	_, err = users.Insert(ctx, u2)
	require.NoError(t, err)

	n, err := users.Delete(ctx, byName("to_delete"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = users.FindOne(ctx, byID(u1.ID))
	assert.True(t, dynrepo.IsNotFound(err))
	_, err = users.FindOne(ctx, byID(u2.ID))
	assert.NoError(t, err)
}

func TestFindByCondition(t *testing.T) {
	users, ctx := open(t)
	for range 2 {
		_, err := users.Insert(ctx, &User{Name: "search_test"})
		require.NoError(t, err)
	}
	_, err := users.Insert(ctx, &User{Name: "other"})
	require.NoError(t, err)

	results, err := users.Find(ctx, byName("search_test").Desc("id"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Greater(t, results[0].ID, results[1].ID)

	results, err = users.Find(ctx, query.For[User]().LikeRight("name", "search").Select("id"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Name)
}

func TestFindOneNoMatch(t *testing.T) {
	users, ctx := open(t)
	found, err := users.FindOne(ctx, byName("nonexistent"))
	assert.Nil(t, found)
	var nf *dynrepo.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "User", nf.Label())
}

func TestCount(t *testing.T) {
	users, ctx := open(t)
	for range 5 {
		_, err := users.Insert(ctx, &User{Name: "count_test"})
		require.NoError(t, err)
	}
	count, err := users.Count(ctx, byName("count_test"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestLogicDelete(t *testing.T) {
	users, ctx := open(t)
	articles := repo.Of[Article](users.Client())
	a, b := &Article{Title: "a"}, &Article{Title: "b"}
	_, err := articles.BatchInsert(ctx, []*Article{a, b})
	require.NoError(t, err)

	n, err := articles.Delete(ctx, query.For[Article]().Eq("title", "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = articles.FindOne(ctx, query.For[Article]().Eq("id", a.ID))
	assert.True(t, dynrepo.IsNotFound(err))
	count, err := articles.Count(ctx, query.For[Article]())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err = articles.Update(ctx, &Article{Title: "revived"}, query.For[Article]().Eq("id", a.ID))
	require.NoError(t, err)
	assert.Zero(t, n, "soft-deleted rows are not updated")

	n, err = articles.Delete(ctx, query.For[Article]().Eq("title", "a"))
	require.NoError(t, err)
	assert.Zero(t, n)
}
