package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"schemaguard/internal/database"
	"schemaguard/internal/jsonschema"
	"schemaguard/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSchemaStore
type MockSchemaStore struct {
	mock.Mock
}

func (m *MockSchemaStore) GetSchema(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockSchemaStore) ListSchemas(ctx context.Context, offset, limit int) ([]*database.Schema, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]*database.Schema), args.Error(1)
}

func (m *MockSchemaStore) CreateSchema(ctx context.Context, name, content string) error {
	args := m.Called(ctx, name, content)
	return args.Error(0)
}

func (m *MockSchemaStore) DeleteSchema(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

const personSchema = `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`

func TestService_Validate(t *testing.T) {
	mockStore := new(MockSchemaStore)
	svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 2)
	ctx := context.Background()

	mockStore.On("GetSchema", mock.Anything, "person").Return(personSchema, nil)
	mockStore.On("GetSchema", mock.Anything, "missing").Return("", database.ErrSchemaNotFound)

	t.Run("Valid document", func(t *testing.T) {
		report, err := svc.Validate(ctx, "person", []byte(`{"name":"x"}`), validation.FormatJSON)
		require.NoError(t, err)
		assert.True(t, report.Valid)
	})

	t.Run("Invalid document", func(t *testing.T) {
		report, err := svc.Validate(ctx, "person", []byte(`{}`), validation.FormatJSON)
		require.NoError(t, err)
		assert.False(t, report.Valid)
		require.Len(t, report.Messages, 1)
		assert.Equal(t, ".name", report.Messages[0].Path)
	})

	t.Run("YAML document", func(t *testing.T) {
		report, err := svc.Validate(ctx, "person", []byte("name: 5\n"), validation.FormatYAML)
		require.NoError(t, err)
		assert.False(t, report.Valid)
		assert.Equal(t, "type", report.Messages[0].Type)
	})

	t.Run("Unknown schema", func(t *testing.T) {
		_, err := svc.Validate(ctx, "missing", []byte(`{}`), validation.FormatJSON)
		assert.ErrorIs(t, err, database.ErrSchemaNotFound)
	})
}

func TestService_PutSchema(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores a schema that compiles", func(t *testing.T) {
		mockStore := new(MockSchemaStore)
		svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)
		mockStore.On("GetSchema", ctx, "person").Return("", database.ErrSchemaNotFound)
		mockStore.On("CreateSchema", ctx, "person", personSchema).Return(nil)

		assert.NoError(t, svc.PutSchema(ctx, "person", personSchema))
		mockStore.AssertExpectations(t)
	})

	t.Run("Rejects a schema that does not compile", func(t *testing.T) {
		mockStore := new(MockSchemaStore)
		svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)

		err := svc.PutSchema(ctx, "broken", `{"minLength":-1}`)
		assert.ErrorIs(t, err, jsonschema.ErrInvalidSchema)
		mockStore.AssertNotCalled(t, "CreateSchema", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		mockStore := new(MockSchemaStore)
		svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)
		mockStore.On("GetSchema", ctx, "person").Return("", database.ErrSchemaNotFound)
		mockStore.On("CreateSchema", ctx, "person", personSchema).Return(errors.New("disk full"))

		assert.ErrorContains(t, svc.PutSchema(ctx, "person", personSchema), "disk full")
	})

	t.Run("Replacing a schema drops its old compiled form", func(t *testing.T) {
		const previous = `{"type":"object"}`
		mockStore := new(MockSchemaStore)
		validator := validation.NewJSONSchemaValidator()
		svc := NewService(mockStore, validator, 0)

		before, err := validator.Compile(previous)
		require.NoError(t, err)
		kept, err := validator.Compile(personSchema)
		require.NoError(t, err)

		mockStore.On("GetSchema", ctx, "person").Return(previous, nil)
		mockStore.On("CreateSchema", ctx, "person", personSchema).Return(nil)

		require.NoError(t, svc.PutSchema(ctx, "person", personSchema))

		after, err := validator.Compile(previous)
		require.NoError(t, err)
		assert.NotSame(t, before, after)

		current, err := validator.Compile(personSchema)
		require.NoError(t, err)
		assert.Same(t, kept, current)
	})
}

func TestService_DeleteSchema(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockSchemaStore)
	svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 0)

	mockStore.On("GetSchema", ctx, "person").Return(personSchema, nil).Once()
	mockStore.On("DeleteSchema", ctx, "person").Return(nil).Once()
	mockStore.On("GetSchema", ctx, "gone").Return("", database.ErrSchemaNotFound).Once()

	assert.NoError(t, svc.DeleteSchema(ctx, "person"))
	assert.ErrorIs(t, svc.DeleteSchema(ctx, "gone"), database.ErrSchemaNotFound)
	mockStore.AssertExpectations(t)
}

func TestService_ValidateBatch(t *testing.T) {
	mockStore := new(MockSchemaStore)
	svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 2)

	mockStore.On("GetSchema", mock.Anything, "person").Return(personSchema, nil)
	mockStore.On("GetSchema", mock.Anything, "missing").Return("", database.ErrSchemaNotFound)

	items := []BatchItem{
		{Schema: "person", Document: json.RawMessage(`{"name":"a"}`)},
		{Schema: "person", Document: json.RawMessage(`{"name":1}`)},
		{Schema: "missing", Document: json.RawMessage(`{}`)},
		{Schema: "person", YAML: "name: b\n"},
		{Schema: "person", Document: json.RawMessage(`{"name":`)},
	}

	results, err := svc.ValidateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, len(items))

	assert.True(t, results[0].Report.Valid)
	assert.False(t, results[1].Report.Valid)
	assert.Nil(t, results[2].Report)
	assert.Equal(t, database.ErrSchemaNotFound.Error(), results[2].Error)
	assert.True(t, results[3].Report.Valid)
	assert.Nil(t, results[4].Report)
	assert.Contains(t, results[4].Error, "malformed")

	for i, r := range results {
		assert.Equal(t, items[i].Schema, r.Schema)
	}
}

func TestService_ValidateBatchCancelled(t *testing.T) {
	mockStore := new(MockSchemaStore)
	svc := NewService(mockStore, validation.NewJSONSchemaValidator(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ValidateBatch(ctx, []BatchItem{{Schema: "person", Document: json.RawMessage(`{}`)}})
	assert.ErrorIs(t, err, context.Canceled)
	mockStore.AssertNotCalled(t, "GetSchema", mock.Anything, mock.Anything)
}

func TestService_Check(t *testing.T) {
	svc := NewService(new(MockSchemaStore), validation.NewJSONSchemaValidator(), 0)

	report, err := svc.Check(`{"type":"array","items":{"type":"integer"}}`, []byte(`[1,"2"]`), validation.FormatJSON)

	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "[1]", report.Messages[0].Path)
}
