package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore implements SchemaStore using the local filesystem. Each schema is kept
// as one JSON document in `<basePath>/schemas/<name>.json`.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "schemas"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create schemas directory: %w", err)
	}

	return &FileStore{
		basePath: basePath,
	}, nil
}

func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

func (s *FileStore) GetSchema(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, err := s.readSchemaFile(name)
	if err != nil {
		return "", err
	}
	return schema.Content, nil
}

func (s *FileStore) ListSchemas(ctx context.Context, offset, limit int) ([]*Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir())
	if err != nil {
		return nil, err
	}

	var schemas []*Schema
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		schema, err := s.readSchemaFile(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip unreadable files
		}
		schemas = append(schemas, schema)
	}

	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return paginate(schemas, offset, limit), nil
}

// CreateSchema creates or replaces the schema stored under name.
func (s *FileStore) CreateSchema(ctx context.Context, name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(name)
	if err != nil {
		return err
	}

	doc := Schema{
		Name:      name,
		Content:   content,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (s *FileStore) DeleteSchema(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSchemaNotFound
		}
		return err
	}
	return nil
}

// Helper functions

func (s *FileStore) dir() string {
	return filepath.Join(s.basePath, "schemas")
}

// path maps a schema name to its file. Names that would escape the schemas
// directory are rejected.
func (s *FileStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid schema name %q", name)
	}
	return filepath.Join(s.dir(), name+".json"), nil
}

func (s *FileStore) readSchemaFile(name string) (*Schema, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSchemaNotFound
		}
		return nil, err
	}

	var doc Schema
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema file %s: %w", path, err)
	}
	return &doc, nil
}
