package validation

import (
	"fmt"
	"strings"
	"sync"

	"schemaguard/internal/jsonschema"
)

// Format names the encoding of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// SchemaValidator defines the interface for validating documents against JSON schemas.
type SchemaValidator interface {
	Validate(schema string, data []byte) error
}

// Report is the outcome of validating one document.
type Report struct {
	Valid    bool                 `json:"valid"`
	Messages []jsonschema.Message `json:"messages"`
}

// ValidationError is returned by Validate when a document does not match its schema.
type ValidationError struct {
	Messages []jsonschema.Message
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	for _, m := range e.Messages {
		fmt.Fprintf(&b, "- %s\n", m.Text)
	}
	return b.String()
}

// JSONSchemaValidator implements SchemaValidator on top of the jsonschema engine.
// Compiled schemas are cached by their text, so a schema is compiled once no matter
// how many documents are checked against it.
type JSONSchemaValidator struct {
	compiler *jsonschema.Compiler
	engines  sync.Map
}

// NewJSONSchemaValidator creates a new JSONSchemaValidator.
func NewJSONSchemaValidator(opts ...jsonschema.Option) *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiler: jsonschema.NewCompiler(opts...),
	}
}

// Compile returns the engine for schema, compiling it on first use.
func (v *JSONSchemaValidator) Compile(schema string) (*jsonschema.Engine, error) {
	if e, ok := v.engines.Load(schema); ok {
		return e.(*jsonschema.Engine), nil
	}

	root, err := v.compiler.Compile([]byte(schema))
	if err != nil {
		return nil, err
	}

	e, _ := v.engines.LoadOrStore(schema, jsonschema.NewEngine(root))
	return e.(*jsonschema.Engine), nil
}

// Forget drops the compiled form of schema from the cache.
func (v *JSONSchemaValidator) Forget(schema string) {
	v.engines.Delete(schema)
}

// Check validates data against schema and reports every violation. The error is
// reserved for schemas that do not compile and documents that cannot be decoded.
// The compiled schema is cached.
func (v *JSONSchemaValidator) Check(schema string, data []byte, format Format) (*Report, error) {
	engine, err := v.Compile(schema)
	if err != nil {
		return nil, err
	}
	return check(engine, data, format)
}

// CheckOnce is like Check but compiles schema for this call only and leaves the
// cache untouched. It serves schemas supplied by clients with each request.
func (v *JSONSchemaValidator) CheckOnce(schema string, data []byte, format Format) (*Report, error) {
	root, err := v.compiler.Compile([]byte(schema))
	if err != nil {
		return nil, err
	}
	return check(jsonschema.NewEngine(root), data, format)
}

func check(engine *jsonschema.Engine, data []byte, format Format) (*Report, error) {
	var (
		msgs *jsonschema.MessageSet
		err  error
	)
	switch format {
	case FormatYAML:
		msgs, err = engine.ValidateYAML(data)
	case FormatJSON, "":
		msgs, err = engine.ValidateJSON(data)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &Report{
		Valid:    msgs.Empty(),
		Messages: msgs.Messages(),
	}, nil
}

// Validate validates a JSON document against a JSON schema.
func (v *JSONSchemaValidator) Validate(schema string, data []byte) error {
	report, err := v.Check(schema, data, FormatJSON)
	if err != nil {
		return err
	}

	if report.Valid {
		return nil
	}
	return &ValidationError{Messages: report.Messages}
}
