package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"schemaguard/internal/database"
)

// SeedSchemas stores every `<name>.json` file of dir that is not already present.
// Existing schemas are never overwritten. A missing directory is not an error.
func (s *Service) SeedSchemas(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Seed directory not found, skipping", "path", dir)
			return nil
		}
		return fmt.Errorf("failed to read seed directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", entry.Name(), err)
		}

		// Check if exists
		if _, err := s.store.GetSchema(ctx, name); err == nil {
			slog.Info("Schema already exists, skipping seed", "name", name)
			continue
		} else if !errors.Is(err, database.ErrSchemaNotFound) {
			return fmt.Errorf("failed to look up schema %s: %w", name, err)
		}

		if err := s.PutSchema(ctx, name, string(content)); err != nil {
			return fmt.Errorf("failed to seed schema %s: %w", name, err)
		}
		slog.Info("Seeded schema", "name", name)
	}

	return nil
}
