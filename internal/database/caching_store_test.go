package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSchemaStore is a mock for the SchemaStore interface
type MockSchemaStore struct {
	mock.Mock
}

func (m *MockSchemaStore) GetSchema(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockSchemaStore) ListSchemas(ctx context.Context, offset, limit int) ([]*Schema, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]*Schema), args.Error(1)
}

func (m *MockSchemaStore) CreateSchema(ctx context.Context, name, content string) error {
	args := m.Called(ctx, name, content)
	return args.Error(0)
}

func (m *MockSchemaStore) DeleteSchema(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func TestCachingSchemaStore_GetSchema(t *testing.T) {
	mockStore := new(MockSchemaStore)
	cachingStore := NewCachingSchemaStore(mockStore)
	ctx := context.Background()

	t.Run("FirstCallFetchesFromStore", func(t *testing.T) {
		mockStore.On("GetSchema", ctx, "test").Return("schema content", nil).Once()

		result, err := cachingStore.GetSchema(ctx, "test")

		assert.NoError(t, err)
		assert.Equal(t, "schema content", result)
		mockStore.AssertExpectations(t)
	})

	t.Run("SecondCallUsesCache", func(t *testing.T) {
		result, err := cachingStore.GetSchema(ctx, "test")

		assert.NoError(t, err)
		assert.Equal(t, "schema content", result)
		mockStore.AssertNumberOfCalls(t, "GetSchema", 1)
	})

	t.Run("ErrorsAreNotCached", func(t *testing.T) {
		mockStore.On("GetSchema", ctx, "broken").Return("", errors.New("db error")).Twice()

		_, err := cachingStore.GetSchema(ctx, "broken")
		assert.Error(t, err)
		_, err = cachingStore.GetSchema(ctx, "broken")
		assert.Error(t, err)

		mockStore.AssertExpectations(t)
	})
}

func TestCachingSchemaStore_Invalidation(t *testing.T) {
	mockStore := new(MockSchemaStore)
	cachingStore := NewCachingSchemaStore(mockStore)
	ctx := context.Background()

	mockStore.On("GetSchema", ctx, "test").Return("v1", nil).Once()
	_, err := cachingStore.GetSchema(ctx, "test")
	assert.NoError(t, err)

	t.Run("CreateInvalidates", func(t *testing.T) {
		mockStore.On("CreateSchema", ctx, "test", "v2").Return(nil).Once()
		mockStore.On("GetSchema", ctx, "test").Return("v2", nil).Once()

		assert.NoError(t, cachingStore.CreateSchema(ctx, "test", "v2"))
		result, err := cachingStore.GetSchema(ctx, "test")

		assert.NoError(t, err)
		assert.Equal(t, "v2", result)
	})

	t.Run("DeleteInvalidates", func(t *testing.T) {
		mockStore.On("DeleteSchema", ctx, "test").Return(nil).Once()
		mockStore.On("GetSchema", ctx, "test").Return("", ErrSchemaNotFound).Once()

		assert.NoError(t, cachingStore.DeleteSchema(ctx, "test"))
		_, err := cachingStore.GetSchema(ctx, "test")

		assert.ErrorIs(t, err, ErrSchemaNotFound)
	})

	mockStore.AssertExpectations(t)
}

func TestCachingSchemaStore_ReadDuringWrite(t *testing.T) {
	mockStore := new(MockSchemaStore)
	cachingStore := NewCachingSchemaStore(mockStore)
	ctx := context.Background()

	// A reader that runs while the write is in flight still sees the old content
	mockStore.On("GetSchema", ctx, "test").Return("v1", nil).Once()
	mockStore.On("CreateSchema", ctx, "test", "v2").Run(func(args mock.Arguments) {
		stale, err := cachingStore.GetSchema(ctx, "test")
		assert.NoError(t, err)
		assert.Equal(t, "v1", stale)
	}).Return(nil).Once()
	mockStore.On("GetSchema", ctx, "test").Return("v2", nil).Once()

	assert.NoError(t, cachingStore.CreateSchema(ctx, "test", "v2"))
	result, err := cachingStore.GetSchema(ctx, "test")

	assert.NoError(t, err)
	assert.Equal(t, "v2", result)
	mockStore.AssertExpectations(t)
}

func TestCachingSchemaStore_ListPassesThrough(t *testing.T) {
	mockStore := new(MockSchemaStore)
	cachingStore := NewCachingSchemaStore(mockStore)
	ctx := context.Background()

	want := []*Schema{{Name: "a"}, {Name: "b"}}
	mockStore.On("ListSchemas", ctx, 0, 10).Return(want, nil).Twice()

	for i := 0; i < 2; i++ {
		got, err := cachingStore.ListSchemas(ctx, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	mockStore.AssertExpectations(t)
}
