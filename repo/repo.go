package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/query"
)

// Repo is the typed view of a Client for entity type T.
type Repo[T any] struct {
	client *Client
}

// Of returns the typed repository of T on client.
func Of[T any](client *Client) *Repo[T] {
	return &Repo[T]{client: client}
}

// Client returns the underlying client.
func (r *Repo[T]) Client() *Client {
	return r.client
}

// Query returns an empty condition bound to T.
func (r *Repo[T]) Query() *query.Condition {
	return query.For[T]()
}

// Insert inserts entity and writes back its generated id.
func (r *Repo[T]) Insert(ctx context.Context, entity *T) (int64, error) {
	return r.client.Insert(ctx, entity)
}

// Upsert inserts entity or overwrites the existing row.
func (r *Repo[T]) Upsert(ctx context.Context, entity *T) (int64, error) {
	return r.client.Upsert(ctx, entity)
}

// BatchInsert inserts entities in one statement.
func (r *Repo[T]) BatchInsert(ctx context.Context, entities []*T) (int64, error) {
	return r.client.BatchInsert(ctx, entities)
}

// BatchUpsert upserts entities in one statement.
func (r *Repo[T]) BatchUpsert(ctx context.Context, entities []*T) (int64, error) {
	return r.client.BatchUpsert(ctx, entities)
}

// Update writes entity to the rows matching cond.
func (r *Repo[T]) Update(ctx context.Context, entity *T, cond query.Builder) (int64, error) {
	return r.client.Update(ctx, entity, cond)
}

// Delete deletes the rows matching cond.
func (r *Repo[T]) Delete(ctx context.Context, cond query.Builder) (int64, error) {
	if err := r.check(cond); err != nil {
		return 0, err
	}
	return r.client.Delete(ctx, cond)
}

// Find returns the entities matching cond.
func (r *Repo[T]) Find(ctx context.Context, cond query.Builder) ([]*T, error) {
	if err := r.check(cond); err != nil {
		return nil, err
	}
	all, err := r.client.Find(ctx, cond)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(all))
	for _, e := range all {
		t, ok := e.(*T)
		if !ok {
			return nil, fmt.Errorf("repo: unexpected entity type %T", e)
		}
		out = append(out, t)
	}
	return out, nil
}

// FindOne returns the first entity matching cond, or a
// *dynrepo.NotFoundError.
func (r *Repo[T]) FindOne(ctx context.Context, cond query.Builder) (*T, error) {
	if err := r.check(cond); err != nil {
		return nil, err
	}
	e, err := r.client.FindOne(ctx, cond)
	if err != nil {
		return nil, err
	}
	t, ok := e.(*T)
	if !ok {
		return nil, fmt.Errorf("repo: unexpected entity type %T", e)
	}
	return t, nil
}

// Count returns the number of rows matching cond.
func (r *Repo[T]) Count(ctx context.Context, cond query.Builder) (int64, error) {
	if err := r.check(cond); err != nil {
		return 0, err
	}
	return r.client.Count(ctx, cond)
}

func (r *Repo[T]) check(cond query.Builder) error {
	c := condOf(cond)
	if c == nil {
		return nil
	}
	if want := reflect.TypeFor[T](); c.Entity() != want {
		return dynrepo.NewConfigError(want.String(), "", fmt.Sprintf("condition is bound to %v", c.Entity()))
	}
	return nil
}
