package database

import (
	"context"
	"sync"
)

// CachingSchemaStore wraps a SchemaStore and caches schema content by name.
type CachingSchemaStore struct {
	store   SchemaStore
	schemas sync.Map
}

// NewCachingSchemaStore creates a new CachingSchemaStore.
func NewCachingSchemaStore(store SchemaStore) *CachingSchemaStore {
	return &CachingSchemaStore{
		store: store,
	}
}

// GetSchema retrieves a schema by name, checking the cache first.
func (c *CachingSchemaStore) GetSchema(ctx context.Context, name string) (string, error) {
	if val, ok := c.schemas.Load(name); ok {
		return val.(string), nil
	}

	schema, err := c.store.GetSchema(ctx, name)
	if err != nil {
		return "", err
	}

	c.schemas.Store(name, schema)
	return schema, nil
}

// ListSchemas always reads through to the underlying store.
func (c *CachingSchemaStore) ListSchemas(ctx context.Context, offset, limit int) ([]*Schema, error) {
	return c.store.ListSchemas(ctx, offset, limit)
}

// InvalidateSchema removes a schema from the cache.
func (c *CachingSchemaStore) InvalidateSchema(name string) {
	c.schemas.Delete(name)
}

// CreateSchema creates a schema and invalidates the cache. The entry is dropped again
// once the write completes, since a read during the write may have cached the old content.
func (c *CachingSchemaStore) CreateSchema(ctx context.Context, name, content string) error {
	c.InvalidateSchema(name)
	defer c.InvalidateSchema(name)
	return c.store.CreateSchema(ctx, name, content)
}

// DeleteSchema deletes a schema and invalidates the cache.
func (c *CachingSchemaStore) DeleteSchema(ctx context.Context, name string) error {
	c.InvalidateSchema(name)
	defer c.InvalidateSchema(name)
	return c.store.DeleteSchema(ctx, name)
}
