package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testConnectionString = "mongodb://localhost:27017"
	testDBName           = "schemaguard_test"
)

func setupTestStore(t *testing.T) *MongoStore {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := NewMongoStore(ctx, testConnectionString, testDBName)
	if err != nil {
		t.Skipf("Skipping MongoDB integration test: %v", err)
	}

	// Clean up database before test
	err = store.database.Drop(ctx)
	require.NoError(t, err)

	return store
}

func teardownTestStore(t *testing.T, store *MongoStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := store.database.Drop(ctx)
	assert.NoError(t, err)

	err = store.Close(ctx)
	assert.NoError(t, err)
}

func TestMongoStore_Schemas(t *testing.T) {
	store := setupTestStore(t)
	defer teardownTestStore(t, store)

	ctx := context.Background()

	t.Run("CreateSchema", func(t *testing.T) {
		require.NoError(t, store.CreateSchema(ctx, "person", `{"type":"object"}`))
		require.NoError(t, store.CreateSchema(ctx, "address", `{"type":"string"}`))
	})

	t.Run("GetSchema", func(t *testing.T) {
		content, err := store.GetSchema(ctx, "person")
		assert.NoError(t, err)
		assert.Equal(t, `{"type":"object"}`, content)

		_, err = store.GetSchema(ctx, "missing")
		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	t.Run("CreateSchemaUpserts", func(t *testing.T) {
		require.NoError(t, store.CreateSchema(ctx, "person", `{"type":"object","required":["name"]}`))

		content, err := store.GetSchema(ctx, "person")
		assert.NoError(t, err)
		assert.Equal(t, `{"type":"object","required":["name"]}`, content)
	})

	t.Run("ListSchemas", func(t *testing.T) {
		schemas, err := store.ListSchemas(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, schemas, 2)
		assert.Equal(t, "address", schemas[0].Name)
		assert.Equal(t, "person", schemas[1].Name)

		page, err := store.ListSchemas(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "person", page[0].Name)
	})

	t.Run("DeleteSchema", func(t *testing.T) {
		assert.NoError(t, store.DeleteSchema(ctx, "address"))
		assert.ErrorIs(t, store.DeleteSchema(ctx, "address"), ErrSchemaNotFound)
	})
}
