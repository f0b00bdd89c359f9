package jsonschema

import (
	"log/slog"
)

// Validator is the contract every compiled keyword implements.
//
// Validate checks node, found at path at inside the document root, and returns the
// violations it found. It never returns nil. A failed constraint is reported as a
// message, not as an error.
type Validator interface {
	Keyword() string
	Validate(vc *Context, node, root any, at string) *MessageSet
}

// Node is a compiled schema object: the keyword validators declared at one level of
// the schema document. A Node is immutable once compiled and may be shared by any
// number of concurrent validations.
type Node struct {
	path       string
	parent     *Node
	validators []Validator
	required   *RequiredValidator
}

func newNode(path string, parent *Node) *Node {
	return &Node{path: path, parent: parent}
}

// Path returns the JSON pointer of the schema object within its document, e.g.
// "#/properties/name".
func (n *Node) Path() string {
	return n.path
}

// Parent returns the schema node this node was compiled under, or nil for the root.
// It is informational only; sibling lookups go through the node's own accessors.
func (n *Node) Parent() *Node {
	return n.parent
}

// Validators returns the keyword validators in schema declaration order.
func (n *Node) Validators() []Validator {
	out := make([]Validator, len(n.validators))
	copy(out, n.validators)
	return out
}

// Validator returns the validator compiled for keyword, if declared at this level.
func (n *Node) Validator(keyword string) (Validator, bool) {
	for _, v := range n.validators {
		if v.Keyword() == keyword {
			return v, true
		}
	}
	return nil, false
}

// RequiredValidator returns the node's own "required" keyword, if declared.
func (n *Node) RequiredValidator() (*RequiredValidator, bool) {
	return n.required, n.required != nil
}

func (n *Node) add(v Validator) {
	n.validators = append(n.validators, v)
	if rv, ok := v.(*RequiredValidator); ok {
		n.required = rv
	}
}

// Validate runs every keyword of the node against node and concatenates the results.
func (n *Node) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	for _, v := range n.validators {
		errs.AddAll(v.Validate(vc, node, root, at))
	}
	return errs
}

// debug logs one keyword invocation.
func debug(keyword, schemaPath, at string) {
	slog.Debug("validate", "keyword", keyword, "schema", schemaPath, "at", at)
}
