package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"schemaguard/internal/catalog"
	"schemaguard/internal/database"
	"schemaguard/internal/jsonschema"

	"github.com/danielgtaylor/huma/v2"
	"github.com/valyala/fastjson"
)

const supportedSchema = "http://json-schema.org/draft-07/schema"

// SchemaHandlers handles schema-related API requests.
type SchemaHandlers struct {
	store   database.SchemaStore
	service *catalog.Service
}

// NewSchemaHandlers registers schema handlers with the API.
func NewSchemaHandlers(api huma.API, store database.SchemaStore, svc *catalog.Service) {
	h := &SchemaHandlers{
		store:   store,
		service: svc,
	}

	huma.Register(api, huma.Operation{
		OperationID: "create-schema",
		Method:      http.MethodPost,
		Path:        "/api/v1/schemas",
		Summary:     "Create or replace a schema",
		Tags:        []string{"Schemas"},
	}, h.CreateSchema)

	huma.Register(api, huma.Operation{
		OperationID: "list-schemas",
		Method:      http.MethodGet,
		Path:        "/api/v1/schemas",
		Summary:     "List schemas",
		Tags:        []string{"Schemas"},
	}, h.ListSchemas)

	huma.Register(api, huma.Operation{
		OperationID: "get-schema",
		Method:      http.MethodGet,
		Path:        "/api/v1/schemas/{name}",
		Summary:     "Get a schema",
		Tags:        []string{"Schemas"},
	}, h.GetSchema)

	huma.Register(api, huma.Operation{
		OperationID: "update-schema",
		Method:      http.MethodPatch,
		Path:        "/api/v1/schemas/{name}",
		Summary:     "Update a schema",
		Description: "Applies a JSON Merge Patch to the stored schema. A null member removes the keyword.",
		Tags:        []string{"Schemas"},
	}, h.UpdateSchema)

	huma.Register(api, huma.Operation{
		OperationID: "delete-schema",
		Method:      http.MethodDelete,
		Path:        "/api/v1/schemas/{name}",
		Summary:     "Delete a schema",
		Tags:        []string{"Schemas"},
	}, h.DeleteSchema)
}

// Inputs/Outputs

type CreateSchemaInput struct {
	Body struct {
		Name    string          `json:"name" minLength:"1" maxLength:"128" pattern:"^[A-Za-z0-9][A-Za-z0-9_.-]*$"`
		Content json.RawMessage `json:"content"`
	}
}

type SchemaNameInput struct {
	Name string `path:"name" maxLength:"128"`
}

type ListSchemasInput struct {
	Offset int `query:"offset" minimum:"0" default:"0"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50"`
}

type SchemaSummary struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListSchemasOutput struct {
	Body []SchemaSummary
}

type SchemaBody struct {
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content"`
}

type GetSchemaOutput struct {
	Body SchemaBody
}

type UpdateSchemaInput struct {
	Name string `path:"name" maxLength:"128"`
	Body struct {
		Content json.RawMessage `json:"content" doc:"Merge patch applied to the stored schema"`
	}
}

// Handlers

// CreateSchema creates or replaces a schema.
func (h *SchemaHandlers) CreateSchema(ctx context.Context, input *CreateSchemaInput) (*struct{}, error) {
	content, err := prepareSchema(input.Body.Content)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	if err := h.service.PutSchema(ctx, input.Body.Name, string(content)); err != nil {
		return nil, schemaError(err)
	}
	return nil, nil
}

// ListSchemas lists stored schemas ordered by name.
func (h *SchemaHandlers) ListSchemas(ctx context.Context, input *ListSchemasInput) (*ListSchemasOutput, error) {
	schemas, err := h.store.ListSchemas(ctx, input.Offset, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	out := &ListSchemasOutput{Body: make([]SchemaSummary, 0, len(schemas))}
	for _, s := range schemas {
		out.Body = append(out.Body, SchemaSummary{Name: s.Name, UpdatedAt: s.UpdatedAt})
	}
	return out, nil
}

// GetSchema retrieves a schema by name.
func (h *SchemaHandlers) GetSchema(ctx context.Context, input *SchemaNameInput) (*GetSchemaOutput, error) {
	content, err := h.store.GetSchema(ctx, input.Name)
	if err != nil {
		return nil, lookupError(err)
	}
	return &GetSchemaOutput{Body: SchemaBody{Name: input.Name, Content: json.RawMessage(content)}}, nil
}

// UpdateSchema merges a partial document into a stored schema.
func (h *SchemaHandlers) UpdateSchema(ctx context.Context, input *UpdateSchemaInput) (*GetSchemaOutput, error) {
	existing, err := h.store.GetSchema(ctx, input.Name)
	if err != nil {
		slog.Warn("UpdateSchema: Schema not found", "name", input.Name, "error", err)
		return nil, lookupError(err)
	}

	merged, err := mergeSchema([]byte(existing), input.Body.Content)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid patch JSON: " + err.Error())
	}

	content, err := prepareSchema(merged)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	if err := h.service.PutSchema(ctx, input.Name, string(content)); err != nil {
		slog.Warn("UpdateSchema: Merged schema rejected", "name", input.Name, "error", err)
		return nil, schemaError(err)
	}
	return &GetSchemaOutput{Body: SchemaBody{Name: input.Name, Content: json.RawMessage(content)}}, nil
}

// DeleteSchema deletes a schema by name.
func (h *SchemaHandlers) DeleteSchema(ctx context.Context, input *SchemaNameInput) (*struct{}, error) {
	if err := h.service.DeleteSchema(ctx, input.Name); err != nil {
		return nil, lookupError(err)
	}
	return nil, nil
}

// prepareSchema checks that content is a schema object for the supported draft and
// declares $schema, adding it when absent. Member order is preserved.
func prepareSchema(content []byte) ([]byte, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(content)
	if err != nil {
		return nil, fmt.Errorf("Invalid JSON content: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, errors.New("Schema content must be a JSON object")
	}

	if val := v.Get("$schema"); val != nil {
		version, err := val.StringBytes()
		if err != nil {
			return nil, errors.New("$schema must be a string")
		}
		if strings.TrimSuffix(string(version), "#") != supportedSchema {
			return nil, errors.New("Unsupported schema version. Only " + supportedSchema + " is supported.")
		}
	} else {
		// Default to supported schema
		var a fastjson.Arena
		v.Set("$schema", a.NewString(supportedSchema))
	}

	return v.MarshalTo(nil), nil
}

func lookupError(err error) error {
	if errors.Is(err, database.ErrSchemaNotFound) {
		return huma.Error404NotFound(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}

func schemaError(err error) error {
	if errors.Is(err, jsonschema.ErrInvalidSchema) {
		return huma.Error400BadRequest(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
