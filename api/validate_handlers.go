package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"schemaguard/internal/catalog"
	"schemaguard/internal/database"
	"schemaguard/internal/jsonschema"
	"schemaguard/internal/validation"

	"github.com/danielgtaylor/huma/v2"
)

// ValidateHandlers handles document validation requests.
type ValidateHandlers struct {
	service *catalog.Service
}

// NewValidateHandlers registers validation handlers with the API.
func NewValidateHandlers(api huma.API, svc *catalog.Service) {
	h := &ValidateHandlers{service: svc}

	huma.Register(api, huma.Operation{
		OperationID: "validate-document",
		Method:      http.MethodPost,
		Path:        "/api/v1/schemas/{name}/validate",
		Summary:     "Validate a document against a stored schema",
		Description: "Returns every violation found. With strict=true an invalid document is answered with 422.",
		Tags:        []string{"Validation"},
	}, h.ValidateDocument)

	huma.Register(api, huma.Operation{
		OperationID: "validate-inline",
		Method:      http.MethodPost,
		Path:        "/api/v1/validate",
		Summary:     "Validate a document against an inline schema",
		Tags:        []string{"Validation"},
	}, h.ValidateInline)

	huma.Register(api, huma.Operation{
		OperationID: "validate-batch",
		Method:      http.MethodPost,
		Path:        "/api/v1/validate/batch",
		Summary:     "Validate many documents",
		Tags:        []string{"Validation"},
	}, h.ValidateBatch)
}

// DocumentBody carries a document either as JSON or as YAML text.
type DocumentBody struct {
	Document json.RawMessage `json:"document,omitempty" doc:"JSON document to validate"`
	YAML     string          `json:"yaml,omitempty" doc:"YAML document to validate, used instead of document"`
}

func (b DocumentBody) payload() ([]byte, validation.Format) {
	return catalog.BatchItem{Document: b.Document, YAML: b.YAML}.Payload()
}

type ValidateDocumentInput struct {
	Name   string `path:"name" maxLength:"128"`
	Strict bool   `query:"strict" doc:"Answer 422 when the document is invalid"`
	Body   DocumentBody
}

type ValidateInlineInput struct {
	Body struct {
		Schema json.RawMessage `json:"schema" doc:"Draft-07 schema"`
		DocumentBody
	}
}

type ReportOutput struct {
	Body *validation.Report
}

type ValidateBatchInput struct {
	Body struct {
		Items []catalog.BatchItem `json:"items" minItems:"1" maxItems:"1000"`
	}
}

type ValidateBatchOutput struct {
	Body struct {
		Results []catalog.BatchResult `json:"results"`
	}
}

// ValidateDocument validates a document against a stored schema.
func (h *ValidateHandlers) ValidateDocument(ctx context.Context, input *ValidateDocumentInput) (*ReportOutput, error) {
	data, format := input.Body.payload()

	report, err := h.service.Validate(ctx, input.Name, data, format)
	if err != nil {
		return nil, validationError(err)
	}

	if input.Strict && !report.Valid {
		details := make([]error, 0, len(report.Messages))
		for _, m := range report.Messages {
			details = append(details, &huma.ErrorDetail{
				Message:  m.Text,
				Location: "body.document" + m.Path,
			})
		}
		return nil, huma.Error422UnprocessableEntity("Document does not match schema "+input.Name, details...)
	}

	return &ReportOutput{Body: report}, nil
}

// ValidateInline validates a document against the schema sent with it.
func (h *ValidateHandlers) ValidateInline(ctx context.Context, input *ValidateInlineInput) (*ReportOutput, error) {
	data, format := input.Body.payload()

	report, err := h.service.Check(string(input.Body.Schema), data, format)
	if err != nil {
		return nil, validationError(err)
	}
	return &ReportOutput{Body: report}, nil
}

// ValidateBatch validates every item of the batch.
func (h *ValidateHandlers) ValidateBatch(ctx context.Context, input *ValidateBatchInput) (*ValidateBatchOutput, error) {
	results, err := h.service.ValidateBatch(ctx, input.Body.Items)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	out := &ValidateBatchOutput{}
	out.Body.Results = results
	return out, nil
}

func validationError(err error) error {
	switch {
	case errors.Is(err, database.ErrSchemaNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, jsonschema.ErrInvalidSchema),
		errors.Is(err, jsonschema.ErrMalformedDocument),
		errors.Is(err, jsonschema.ErrUnsupportedValue):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
