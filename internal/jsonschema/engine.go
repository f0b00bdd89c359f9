package jsonschema

import (
	"errors"
)

// ErrSchemaNotLoaded is returned when validation is attempted without a schema.
var ErrSchemaNotLoaded = errors.New("schema not loaded")

// Engine drives top-level validations against one compiled schema. An Engine is
// safe for concurrent use: every call gets its own Context.
type Engine struct {
	root *Node
}

// NewEngine returns an Engine for root.
func NewEngine(root *Node) *Engine {
	return &Engine{root: root}
}

// Root returns the compiled schema the engine validates against.
func (e *Engine) Root() *Node {
	return e.root
}

// Validate checks instance against the schema. An empty set means the instance is
// valid. The error is reserved for faults found before validation starts, such as
// an instance holding values with no JSON representation.
func (e *Engine) Validate(instance any) (*MessageSet, error) {
	if e.root == nil {
		return nil, ErrSchemaNotLoaded
	}
	doc, err := Normalize(instance)
	if err != nil {
		return nil, err
	}
	return e.validate(doc), nil
}

// ValidateJSON decodes data as JSON and validates it.
func (e *Engine) ValidateJSON(data []byte) (*MessageSet, error) {
	if e.root == nil {
		return nil, ErrSchemaNotLoaded
	}
	doc, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return e.validate(doc), nil
}

// ValidateYAML decodes data as YAML and validates it.
func (e *Engine) ValidateYAML(data []byte) (*MessageSet, error) {
	if e.root == nil {
		return nil, ErrSchemaNotLoaded
	}
	doc, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return e.validate(doc), nil
}

func (e *Engine) validate(doc any) *MessageSet {
	vc := NewContext()
	return e.root.Validate(vc, doc, doc, "")
}

// Validate checks instance against root with a fresh Context.
func Validate(root *Node, instance any) (*MessageSet, error) {
	return NewEngine(root).Validate(instance)
}
