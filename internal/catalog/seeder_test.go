package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"schemaguard/internal/database"
	"schemaguard/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSeedSchemas(t *testing.T) {
	dir := t.TempDir()

	schemaContent := `{"type":"object"}`
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "test_schema.json"), []byte(schemaContent), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))
	assert.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.json"), 0o755))

	t.Run("Seeds new schemas", func(t *testing.T) {
		mockStore := new(MockSchemaStore)
		svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)
		ctx := context.Background()

		mockStore.On("GetSchema", ctx, "test_schema").Return("", database.ErrSchemaNotFound)
		mockStore.On("CreateSchema", ctx, "test_schema", schemaContent).Return(nil)

		err := svc.SeedSchemas(ctx, dir)
		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("Skips existing schemas", func(t *testing.T) {
		mockStore := new(MockSchemaStore)
		svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)
		ctx := context.Background()

		mockStore.On("GetSchema", ctx, "test_schema").Return("existing content", nil)

		err := svc.SeedSchemas(ctx, dir)
		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
		mockStore.AssertNotCalled(t, "CreateSchema", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store lookup failure", func(t *testing.T) {
		mockStore := new(MockSchemaStore)
		svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)
		ctx := context.Background()

		mockStore.On("GetSchema", ctx, "test_schema").Return("", errors.New("connection refused"))

		err := svc.SeedSchemas(ctx, dir)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("Missing directory", func(t *testing.T) {
		svc := NewService(new(MockSchemaStore), validation.NewJSONSchemaValidator(), 0)

		assert.NoError(t, svc.SeedSchemas(context.Background(), filepath.Join(dir, "absent")))
	})
}

func TestSeedSchemas_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"type":"strung"}`), 0o644))

	mockStore := new(MockSchemaStore)
	svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)
	ctx := context.Background()
	mockStore.On("GetSchema", ctx, "broken").Return("", database.ErrSchemaNotFound)

	err := svc.SeedSchemas(ctx, dir)

	assert.ErrorContains(t, err, "broken")
	mockStore.AssertNotCalled(t, "CreateSchema", mock.Anything, mock.Anything, mock.Anything)
}
