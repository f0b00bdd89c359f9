package database

import (
	"context"
	"errors"
	"time"
)

// ErrSchemaNotFound is returned when no schema is stored under the requested name.
var ErrSchemaNotFound = errors.New("schema not found")

// Schema is a named JSON Schema document.
type Schema struct {
	Name      string    `json:"name" bson:"_id"`
	Content   string    `json:"content" bson:"content"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SchemaStore defines the interface for storing named schema documents.
// ListSchemas returns schemas ordered by name; a limit of zero or less means no limit.
type SchemaStore interface {
	GetSchema(ctx context.Context, name string) (string, error)
	ListSchemas(ctx context.Context, offset, limit int) ([]*Schema, error)
	CreateSchema(ctx context.Context, name, content string) error
	DeleteSchema(ctx context.Context, name string) error
}

// paginate applies offset and limit to an ordered slice.
func paginate(schemas []*Schema, offset, limit int) []*Schema {
	total := len(schemas)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*Schema{}
	}

	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return schemas[offset:end]
}
