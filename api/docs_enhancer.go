package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"schemaguard/internal/database"

	"github.com/danielgtaylor/huma/v2"
)

// EnhanceDocumentation publishes the stored schemas and the markdown user guide in the OpenAPI document.
func EnhanceDocumentation(ctx context.Context, api huma.API, store database.SchemaStore, docsDir string) error {
	if err := registerSchemas(ctx, api, store); err != nil {
		return fmt.Errorf("failed to register schemas: %w", err)
	}

	if err := embedMarkdownDocs(api, docsDir); err != nil {
		return fmt.Errorf("failed to embed markdown docs: %w", err)
	}

	return nil
}

func registerSchemas(ctx context.Context, api huma.API, store database.SchemaStore) error {
	schemas, err := store.ListSchemas(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}

	registry := api.OpenAPI().Components.Schemas
	if registry == nil {
		return fmt.Errorf("OpenAPI components schemas registry is nil")
	}

	for _, schema := range schemas {
		var humaSchema huma.Schema
		if err := json.Unmarshal([]byte(schema.Content), &humaSchema); err != nil {
			slog.Warn("Failed to parse schema content", "name", schema.Name, "error", err)
			continue
		}

		// Stored schemas must not shadow the API's own types
		if _, exists := registry.Map()[schema.Name]; exists {
			slog.Warn("Schema name collides with an API type, skipping", "name", schema.Name)
			continue
		}

		registry.Map()[schema.Name] = &humaSchema
		slog.Info("Registered OpenAPI schema", "name", schema.Name)
	}

	return nil
}

func embedMarkdownDocs(api huma.API, docsDir string) error {
	userGuidePath := filepath.Join(docsDir, "user_guide.md")

	content, err := os.ReadFile(userGuidePath)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("User guide not found, skipping overview embedding", "path", userGuidePath)
			return nil
		}
		return err
	}

	api.OpenAPI().Info.Description = string(content)
	slog.Info("Embedded user_guide.md as API Overview")

	return nil
}
