package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"schemaguard/internal/database"
	"schemaguard/internal/validation"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds the number of documents a batch validates at once
// when no limit is configured.
const DefaultBatchConcurrency = 8

// Service validates documents against the schemas held in a SchemaStore.
type Service struct {
	store       database.SchemaStore
	validator   *validation.JSONSchemaValidator
	concurrency int
}

// NewService creates a new Service with the given dependencies.
func NewService(store database.SchemaStore, v *validation.JSONSchemaValidator, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	return &Service{
		store:       store,
		validator:   v,
		concurrency: concurrency,
	}
}

// PutSchema compiles content and, if it compiles, stores it under name. The
// compiled form of the content it replaces is dropped.
func (s *Service) PutSchema(ctx context.Context, name, content string) error {
	if _, err := s.validator.Compile(content); err != nil {
		return err
	}

	// Lookup failures only mean there is nothing to drop
	previous, lookupErr := s.store.GetSchema(ctx, name)

	if err := s.store.CreateSchema(ctx, name, content); err != nil {
		return fmt.Errorf("failed to store schema %s: %w", name, err)
	}
	if lookupErr == nil && previous != content {
		s.validator.Forget(previous)
	}
	slog.Info("Stored schema", "name", name)
	return nil
}

// DeleteSchema removes a stored schema and drops its compiled form.
func (s *Service) DeleteSchema(ctx context.Context, name string) error {
	content, err := s.store.GetSchema(ctx, name)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSchema(ctx, name); err != nil {
		return err
	}
	s.validator.Forget(content)
	slog.Info("Deleted schema", "name", name)
	return nil
}

// Validate checks data against the schema stored under name.
func (s *Service) Validate(ctx context.Context, name string, data []byte, format validation.Format) (*validation.Report, error) {
	content, err := s.store.GetSchema(ctx, name)
	if err != nil {
		return nil, err
	}

	report, err := s.validator.Check(content, data, format)
	if err != nil {
		return nil, err
	}
	slog.Debug("Validated document", "schema", name, "valid", report.Valid, "messages", len(report.Messages))
	return report, nil
}

// Check validates data against a schema given inline rather than by name. Inline
// schemas are not cached.
func (s *Service) Check(schema string, data []byte, format validation.Format) (*validation.Report, error) {
	return s.validator.CheckOnce(schema, data, format)
}

// BatchItem is one document of a batch validation.
type BatchItem struct {
	Schema   string          `json:"schema" doc:"Name of a stored schema"`
	Document json.RawMessage `json:"document,omitempty" doc:"JSON document to validate"`
	YAML     string          `json:"yaml,omitempty" doc:"YAML document to validate, used instead of document"`
}

// BatchResult is the outcome for the BatchItem at the same index.
type BatchResult struct {
	Schema string             `json:"schema"`
	Report *validation.Report `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// ValidateBatch validates every item concurrently. A failure to validate one item
// is reported in its result and does not stop the others; only cancellation of ctx
// fails the whole batch.
func (s *Service) ValidateBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	results := make([]BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, format := item.Payload()
			report, err := s.Validate(gctx, item.Schema, data, format)

			results[i] = BatchResult{Schema: item.Schema, Report: report}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Payload returns the document bytes of the item and their format.
func (i BatchItem) Payload() ([]byte, validation.Format) {
	if i.YAML != "" {
		return []byte(i.YAML), validation.FormatYAML
	}
	return i.Document, validation.FormatJSON
}
