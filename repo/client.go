package repo

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/syssam/dynrepo"
	"github.com/syssam/dynrepo/dialect"
	"github.com/syssam/dynrepo/mapper"
	"github.com/syssam/dynrepo/metadata"
	"github.com/syssam/dynrepo/query"
)

// Client executes repository operations for any declared entity type.
// It is safe for concurrent use when the backend is.
type Client struct {
	backend dialect.Backend
	m       *mapper.Marshaller
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMarshaller sets the marshaller used to convert entities and rows.
func WithMarshaller(m *mapper.Marshaller) Option {
	return func(c *Client) { c.m = m }
}

// WithLogger sets the client logger. The global zap logger is used by
// default.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client backed by backend.
func New(backend dialect.Backend, opts ...Option) *Client {
	c := &Client{backend: backend}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.L()
	}
	if c.m == nil {
		c.m = mapper.New(mapper.WithLogger(c.log))
	}
	return c
}

// Insert inserts entity and writes the generated id back when entity is
// a pointer whose id was unset. It returns the number of affected rows.
func (c *Client) Insert(ctx context.Context, entity any) (int64, error) {
	return c.insert(ctx, entity, false)
}

// Upsert inserts entity or, on a unique-key conflict, overwrites the
// duplicate-update columns of the existing row.
func (c *Client) Upsert(ctx context.Context, entity any) (int64, error) {
	return c.insert(ctx, entity, true)
}

func (c *Client) insert(ctx context.Context, entity any, upsert bool) (int64, error) {
	meta, err := entityMeta(entity)
	if err != nil {
		return 0, err
	}
	row, err := c.m.ToRow(entity, meta, true)
	if err != nil {
		return 0, err
	}
	var res dialect.Result
	if upsert {
		res, err = c.backend.Upsert(ctx, meta.TableName, row, meta.DuplicateUpdateColumns)
	} else {
		res, err = c.backend.Insert(ctx, meta.TableName, row)
	}
	if err != nil {
		return 0, fmt.Errorf("repo: insert %s: %w", meta.Name(), err)
	}
	if _, ok := row[meta.IDColumn]; !ok && len(res.IDs) == 1 {
		if err := writeID(meta, reflect.ValueOf(entity), res.IDs[0]); err != nil {
			return res.Affected, err
		}
	}
	c.log.Debug("repo: insert",
		zap.String("table", meta.TableName),
		zap.Bool("upsert", upsert),
		zap.Int64("affected", res.Affected),
	)
	return res.Affected, nil
}

// BatchInsert inserts a slice of entities in one statement. Generated ids
// are written back when no entity carried an id. An empty slice is a no-op.
func (c *Client) BatchInsert(ctx context.Context, entities any) (int64, error) {
	return c.batch(ctx, entities, false)
}

// BatchUpsert is the batch form of Upsert. Ids are not written back.
func (c *Client) BatchUpsert(ctx context.Context, entities any) (int64, error) {
	return c.batch(ctx, entities, true)
}

func (c *Client) batch(ctx context.Context, entities any, upsert bool) (int64, error) {
	v := reflect.ValueOf(entities)
	if v.Kind() != reflect.Slice {
		return 0, dynrepo.NewConfigError(fmt.Sprintf("%T", entities), "", "batch input must be a slice")
	}
	if v.Len() == 0 {
		return 0, nil
	}
	meta, err := metaOf(v.Type().Elem())
	if err != nil {
		return 0, err
	}
	rows, err := c.m.ToRows(entities, meta, true)
	if err != nil {
		return 0, err
	}
	var res dialect.Result
	if upsert {
		res, err = c.backend.BatchUpsert(ctx, meta.TableName, rows, meta.DuplicateUpdateColumns)
	} else {
		res, err = c.backend.BatchInsert(ctx, meta.TableName, rows)
	}
	if err != nil {
		return 0, fmt.Errorf("repo: batch insert %s: %w", meta.Name(), err)
	}
	if !upsert && len(res.IDs) == len(rows) && !anyHas(rows, meta.IDColumn) {
		for i, id := range res.IDs {
			if err := writeID(meta, v.Index(i), id); err != nil {
				return res.Affected, fmt.Errorf("repo: entity %d: %w", i, err)
			}
		}
	}
	c.log.Debug("repo: batch insert",
		zap.String("table", meta.TableName),
		zap.Bool("upsert", upsert),
		zap.Int("rows", len(rows)),
		zap.Int64("affected", res.Affected),
	)
	return res.Affected, nil
}

// Update writes the columns of entity to every row matching cond. The
// created-at column is left untouched.
func (c *Client) Update(ctx context.Context, entity any, cond query.Builder) (int64, error) {
	meta, err := entityMeta(entity)
	if err != nil {
		return 0, err
	}
	if err := check(meta, cond); err != nil {
		return 0, err
	}
	row, err := c.m.ToRow(entity, meta, false)
	if err != nil {
		return 0, err
	}
	n, err := c.backend.Update(ctx, meta.TableName, row, condOf(cond), meta.LogicDelete)
	if err != nil {
		return 0, fmt.Errorf("repo: update %s: %w", meta.Name(), err)
	}
	return n, nil
}

// Delete removes the rows matching cond, or marks them deleted when the
// table uses logic deletion.
func (c *Client) Delete(ctx context.Context, cond query.Builder) (int64, error) {
	meta, err := metaOfCond(cond)
	if err != nil {
		return 0, err
	}
	var n int64
	if meta.LogicDelete {
		n, err = c.backend.LogicDelete(ctx, meta.TableName, cond.Cond())
	} else {
		n, err = c.backend.Delete(ctx, meta.TableName, cond.Cond())
	}
	if err != nil {
		return 0, fmt.Errorf("repo: delete %s: %w", meta.Name(), err)
	}
	return n, nil
}

// Find returns the entities matching cond as pointers to the entity type.
func (c *Client) Find(ctx context.Context, cond query.Builder) ([]any, error) {
	meta, err := metaOfCond(cond)
	if err != nil {
		return nil, err
	}
	return c.find(ctx, meta, cond.Cond())
}

func (c *Client) find(ctx context.Context, meta *metadata.Table, cond *query.Condition) ([]any, error) {
	rows, err := c.backend.Find(ctx, meta.TableName, cond, meta.LogicDelete)
	if err != nil {
		return nil, fmt.Errorf("repo: find %s: %w", meta.Name(), err)
	}
	return c.m.FromRows(rows, meta)
}

// FindOne returns the first entity matching cond. It sets the limit of
// cond to 1 and returns a *dynrepo.NotFoundError when nothing matches.
func (c *Client) FindOne(ctx context.Context, cond query.Builder) (any, error) {
	meta, err := metaOfCond(cond)
	if err != nil {
		return nil, err
	}
	all, err := c.find(ctx, meta, cond.Cond().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, dynrepo.NewNotFoundError(meta.Name())
	}
	return all[0], nil
}

// Count returns the number of rows matching cond.
func (c *Client) Count(ctx context.Context, cond query.Builder) (int64, error) {
	meta, err := metaOfCond(cond)
	if err != nil {
		return 0, err
	}
	n, err := c.backend.Count(ctx, meta.TableName, cond.Cond(), meta.LogicDelete)
	if err != nil {
		return 0, fmt.Errorf("repo: count %s: %w", meta.Name(), err)
	}
	return n, nil
}

func entityMeta(entity any) (*metadata.Table, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, dynrepo.NewConfigError(fmt.Sprintf("%T", entity), "", "entity is nil")
	}
	return metaOf(v.Type())
}

func metaOf(t reflect.Type) (*metadata.Table, error) {
	if t == nil {
		return nil, dynrepo.NewConfigError("<nil>", "", "entity is nil")
	}
	return metadata.Get(t)
}

func metaOfCond(cond query.Builder) (*metadata.Table, error) {
	c := condOf(cond)
	if c == nil || c.Entity() == nil {
		return nil, dynrepo.NewConfigError("<nil>", "", "condition is not bound to an entity type")
	}
	return metadata.Get(c.Entity())
}

// check verifies that cond, if bound, targets the entity of meta.
func check(meta *metadata.Table, cond query.Builder) error {
	c := condOf(cond)
	if c == nil || c.Entity() == nil || c.Entity() == meta.Type {
		return nil
	}
	return dynrepo.NewConfigError(meta.Type.String(), "", "condition is bound to "+c.Entity().String())
}

func condOf(cond query.Builder) *query.Condition {
	if cond == nil {
		return nil
	}
	v := reflect.ValueOf(cond)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return cond.Cond()
}

func anyHas(rows []dynrepo.Row, column string) bool {
	for _, r := range rows {
		if _, ok := r[column]; ok {
			return true
		}
	}
	return false
}

// writeID stores a generated id into the id field of entity. Entities
// passed by value are not addressable and are skipped.
func writeID(meta *metadata.Table, entity reflect.Value, id any) error {
	if meta.ID == nil || id == nil {
		return nil
	}
	for entity.Kind() == reflect.Pointer || entity.Kind() == reflect.Interface {
		if entity.IsNil() {
			return nil
		}
		entity = entity.Elem()
	}
	if !entity.CanAddr() {
		return nil
	}
	b := meta.ID
	if b.Accepts(id) {
		return b.Set(entity, id)
	}
	conv, err := b.Resolve()
	if err != nil {
		return err
	}
	out, err := conv.Deserialize(b.Type, id)
	if err != nil {
		return fmt.Errorf("repo: write back %s.%s: %w", meta.Name(), b.Name, err)
	}
	return b.Set(entity, out)
}
