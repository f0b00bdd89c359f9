package jsonschema

import (
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
	"github.com/xeipuuv/gojsonreference"
)

// compileRef resolves a $ref against the document being compiled. Only references
// into the same document are supported.
func (s *compilation) compileRef(node *Node, v *fastjson.Value, path string) (Validator, error) {
	raw, err := stringValue(v, path)
	if err != nil {
		return nil, err
	}
	ref, err := gojsonreference.NewJsonReference(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid $ref %q: %w", path, raw, err)
	}
	if ref.HasFullUrl || ref.HasUrlPathOnly || ref.HasFileScheme {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrRemoteRef, raw)
	}

	tokens := splitPointer(ref.GetUrl().Fragment)
	target := s.doc.Get(tokens...)
	if target == nil {
		return nil, fmt.Errorf("%s: unresolved $ref %q", path, raw)
	}

	targetNode, err := s.compileNode(target, joinPointer(tokens), node)
	if err != nil {
		return nil, err
	}
	if targetNode == node {
		return nil, fmt.Errorf("%s: $ref %q refers to itself", path, raw)
	}
	return &RefValidator{ref: raw, target: targetNode}, nil
}

// splitPointer decodes a JSON pointer fragment into its reference tokens.
func splitPointer(fragment string) []string {
	if fragment == "" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(fragment, "/"), "/")
	for i, p := range parts {
		parts[i] = unescapeToken(p)
	}
	return parts
}

// joinPointer builds the schema path used to index compiled nodes.
func joinPointer(tokens []string) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(escapeToken(t))
	}
	return b.String()
}

func escapeToken(t string) string {
	return strings.ReplaceAll(strings.ReplaceAll(t, "~", "~0"), "/", "~1")
}

func unescapeToken(t string) string {
	return strings.ReplaceAll(strings.ReplaceAll(t, "~1", "/"), "~0", "~")
}

// lastToken returns the keyword at the end of a schema path.
func lastToken(path string) string {
	return unescapeToken(path[strings.LastIndexByte(path, '/')+1:])
}
