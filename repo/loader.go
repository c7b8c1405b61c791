package repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/metadata"
)

// FindByIDs loads the entities with the given ids in one query. The result
// has the same length and order as ids; a missing id leaves a nil entity
// and a *dynrepo.NotFoundError at its index. The returned error is set only
// when the query itself fails.
//
//	users, errs, err := repo.FindByIDs(ctx, repo.Of[User](client), []int64{3, 1, 2})
func FindByIDs[T any, K comparable](ctx context.Context, r *Repo[T], ids []K) ([]*T, []error, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	meta, err := metadata.For[T]()
	if err != nil {
		return nil, nil, err
	}
	if meta.ID == nil {
		return nil, nil, dynrepo.NewConfigError(meta.Name(), "", "no id column "+meta.IDColumn)
	}
	seen := make(map[K]struct{}, len(ids))
	keys := make([]K, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			keys = append(keys, id)
		}
	}

	found, err := r.Find(ctx, r.Query().In(meta.IDColumn, keys))
	if err != nil {
		return nil, nil, err
	}
	return OrderByKeys(meta, ids, found)
}

// OrderByKeys reorders entities to match ids by their id field. Missing
// ids yield nil entities with a *dynrepo.NotFoundError.
func OrderByKeys[T any, K comparable](meta *metadata.Table, ids []K, entities []*T) ([]*T, []error, error) {
	lookup := make(map[K]*T, len(entities))
	for _, e := range entities {
		v, err := meta.ID.Get(reflect.ValueOf(e))
		if err != nil {
			return nil, nil, err
		}
		k, ok := v.(K)
		if !ok {
			return nil, nil, dynrepo.NewConfigError(meta.Name(), meta.ID.Name, fmt.Sprintf("id of type %T is not a %T key", v, *new(K)))
		}
		lookup[k] = e
	}
	result := make([]*T, len(ids))
	errs := make([]error, len(ids))
	for i, id := range ids {
		if e, ok := lookup[id]; ok {
			result[i] = e
		} else {
			errs[i] = dynrepo.NewNotFoundError(fmt.Sprintf("%s %v", meta.Name(), id))
		}
	}
	return result, errs, nil
}

// GroupByKey groups entities by key.
func GroupByKey[K comparable, T any](entities []*T, key func(*T) K) map[K][]*T {
	groups := make(map[K][]*T)
	for _, e := range entities {
		k := key(e)
		groups[k] = append(groups[k], e)
	}
	return groups
}
