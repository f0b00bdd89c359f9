package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/grafana/regexp"
	"github.com/valyala/fastjson"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrInvalidSchema wraps every error reported while compiling a schema document.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrRemoteRef is returned for a $ref that points outside the schema document.
	ErrRemoteRef = errors.New("remote $ref is not supported")
)

// Compiler turns schema documents into immutable Node trees.
type Compiler struct {
	formats        map[string]FormatChecker
	metaValidation bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithFormat registers or replaces the checker used for a "format" value.
func WithFormat(name string, check FormatChecker) Option {
	return func(c *Compiler) {
		c.formats[name] = check
	}
}

// WithMetaValidation checks every schema against the draft-07 meta-schema before
// compiling it.
func WithMetaValidation(enabled bool) Option {
	return func(c *Compiler) {
		c.metaValidation = enabled
	}
}

// NewCompiler returns a Compiler with the built-in formats.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{formats: defaultFormats()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles a schema document with a default Compiler.
func Compile(schema []byte) (*Node, error) {
	return NewCompiler().Compile(schema)
}

// MustCompile is like Compile but panics if the schema cannot be compiled.
func MustCompile(schema string) *Node {
	n, err := Compile([]byte(schema))
	if err != nil {
		panic(err)
	}
	return n
}

// Compile parses schema and builds its Node tree. Object members keep the order in
// which the document declares them.
func (c *Compiler) Compile(schema []byte) (*Node, error) {
	if c.metaValidation {
		if err := checkMetaSchema(schema); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
	}

	doc, err := fastjson.ParseBytes(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	s := &compilation{
		compiler: c,
		doc:      doc,
		nodes:    make(map[string]*Node),
	}
	root, err := s.compileNode(doc, "#", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if err := checkCycles(s.nodes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return root, nil
}

// checkMetaSchema validates the schema document against the draft-07 meta-schema.
func checkMetaSchema(schema []byte) error {
	loader := gojsonschema.NewSchemaLoader()
	loader.Validate = true
	loader.Draft = gojsonschema.Draft7
	if _, err := loader.Compile(gojsonschema.NewBytesLoader(schema)); err != nil {
		return fmt.Errorf("meta-schema check failed: %w", err)
	}
	return nil
}

// compilation holds the state of one Compile call.
type compilation struct {
	compiler *Compiler
	doc      *fastjson.Value
	// nodes indexes compiled nodes by schema pointer so $ref targets are shared and
	// recursive schemas terminate.
	nodes map[string]*Node
}

type keywordBuilder func(s *compilation, node *Node, obj *fastjson.Object, v *fastjson.Value, path string) (Validator, error)

var keywords map[string]keywordBuilder

func init() {
	keywords = map[string]keywordBuilder{
		"type":                 buildType,
		"enum":                 buildEnum,
		"const":                buildConst,
		"minLength":            buildLength,
		"maxLength":            buildLength,
		"pattern":              buildPattern,
		"format":               buildFormat,
		"minimum":              buildLimit,
		"maximum":              buildLimit,
		"exclusiveMinimum":     buildLimit,
		"exclusiveMaximum":     buildLimit,
		"multipleOf":           buildMultipleOf,
		"items":                buildItems,
		"additionalItems":      buildAdditionalItems,
		"minItems":             buildCount,
		"maxItems":             buildCount,
		"minProperties":        buildCount,
		"maxProperties":        buildCount,
		"uniqueItems":          buildUniqueItems,
		"contains":             buildContains,
		"properties":           buildProperties,
		"required":             buildRequired,
		"patternProperties":    buildPatternProperties,
		"additionalProperties": buildAdditionalProperties,
		"propertyNames":        buildPropertyNames,
		"dependencies":         buildDependencies,
		"allOf":                buildAllOf,
		"anyOf":                buildAnyOf,
		"oneOf":                buildOneOf,
		"not":                  buildNot,
	}
}

func (s *compilation) compileNode(v *fastjson.Value, path string, parent *Node) (*Node, error) {
	if n, ok := s.nodes[path]; ok {
		return n, nil
	}
	node := newNode(path, parent)
	s.nodes[path] = node

	switch v.Type() {
	case fastjson.TypeTrue:
		return node, nil
	case fastjson.TypeFalse:
		node.add(&FalseValidator{})
		return node, nil
	case fastjson.TypeObject:
	default:
		return nil, fmt.Errorf("%s: schema must be an object or a boolean, got %s", path, v.Type())
	}

	obj, _ := v.Object()

	// $ref replaces every sibling keyword
	if ref := obj.Get("$ref"); ref != nil {
		rv, err := s.compileRef(node, ref, path+"/$ref")
		if err != nil {
			return nil, err
		}
		node.add(rv)
		return node, nil
	}

	for _, key := range objectKeys(obj) {
		build, ok := keywords[key]
		if !ok {
			continue
		}
		val, err := build(s, node, obj, obj.Get(key), path+"/"+escapeToken(key))
		if err != nil {
			return nil, err
		}
		if val != nil {
			node.add(val)
		}
	}
	return node, nil
}

func objectKeys(obj *fastjson.Object) []string {
	keys := make([]string, 0, obj.Len())
	obj.Visit(func(k []byte, _ *fastjson.Value) {
		keys = append(keys, string(k))
	})
	return keys
}

// toValue converts a parsed schema value into the normalized instance model.
func toValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeNumber:
		return json.Number(v.String())
	case fastjson.TypeString:
		sb, _ := v.StringBytes()
		return string(sb)
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toValue(item)
		}
		return out
	case fastjson.TypeObject:
		obj, _ := v.Object()
		out := make(map[string]any, obj.Len())
		obj.Visit(func(k []byte, e *fastjson.Value) {
			out[string(k)] = toValue(e)
		})
		return out
	}
	return nil
}

func stringValue(v *fastjson.Value, path string) (string, error) {
	sb, err := v.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%s: expected a string", path)
	}
	return string(sb), nil
}

func stringArray(v *fastjson.Value, path string) ([]string, error) {
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%s: expected an array of strings", path)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		str, err := stringValue(item, path+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, str)
	}
	return out, nil
}

func ratValue(v *fastjson.Value, path string) (*big.Rat, error) {
	if v.Type() != fastjson.TypeNumber {
		return nil, fmt.Errorf("%s: expected a number", path)
	}
	r, ok := new(big.Rat).SetString(v.String())
	if !ok {
		return nil, fmt.Errorf("%s: invalid number %s", path, v.String())
	}
	return r, nil
}

func nonNegativeInt(v *fastjson.Value, path string) (int, error) {
	r, err := ratValue(v, path)
	if err != nil {
		return 0, err
	}
	if !r.IsInt() || r.Sign() < 0 || !r.Num().IsInt64() {
		return 0, fmt.Errorf("%s: expected a non-negative integer", path)
	}
	return int(r.Num().Int64()), nil
}

func (s *compilation) schemaArray(node *Node, v *fastjson.Value, path string) ([]*Node, error) {
	items, err := v.Array()
	if err != nil || len(items) == 0 {
		return nil, fmt.Errorf("%s: expected a non-empty array of schemas", path)
	}
	out := make([]*Node, 0, len(items))
	for i, item := range items {
		n, err := s.compileNode(item, path+"/"+strconv.Itoa(i), node)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func buildType(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	var types []string
	if v.Type() == fastjson.TypeString {
		t, _ := stringValue(v, path)
		types = []string{t}
	} else {
		var err error
		if types, err = stringArray(v, path); err != nil {
			return nil, err
		}
	}
	for _, t := range types {
		switch t {
		case TypeNull, TypeBoolean, TypeObject, TypeArray, TypeNumber, TypeInteger, TypeString:
		default:
			return nil, fmt.Errorf("%s: unknown type %q", path, t)
		}
	}
	return &TypeValidator{types: types}, nil
}

func buildEnum(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	if v.Type() != fastjson.TypeArray {
		return nil, fmt.Errorf("%s: expected an array", path)
	}
	values, _ := toValue(v).([]any)
	return &EnumValidator{values: values, text: formatValue(values)}, nil
}

func buildConst(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, _ string) (Validator, error) {
	value := toValue(v)
	return &ConstValidator{value: value, text: formatValue(value)}, nil
}

func buildLength(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	limit, err := nonNegativeInt(v, path)
	if err != nil {
		return nil, err
	}
	return &LengthValidator{keyword: lastToken(path), limit: limit}, nil
}

func buildPattern(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	pattern, err := stringValue(v, path)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &PatternValidator{re: re}, nil
}

func buildFormat(s *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	format, err := stringValue(v, path)
	if err != nil {
		return nil, err
	}
	check, ok := s.compiler.formats[format]
	if !ok {
		return nil, nil
	}
	return &FormatValidator{format: format, check: check}, nil
}

func buildLimit(_ *compilation, _ *Node, obj *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	keyword := lastToken(path)
	if keyword == "exclusiveMinimum" || keyword == "exclusiveMaximum" {
		switch v.Type() {
		case fastjson.TypeTrue, fastjson.TypeFalse:
			// draft-04 form, applied by the matching minimum/maximum
			return nil, nil
		}
	} else {
		exclusive := "exclusiveMaximum"
		if keyword == "minimum" {
			exclusive = "exclusiveMinimum"
		}
		if e := obj.Get(exclusive); e != nil && e.Type() == fastjson.TypeTrue {
			keyword = exclusive
		}
	}
	limit, err := ratValue(v, path)
	if err != nil {
		return nil, err
	}
	return &LimitValidator{keyword: keyword, limit: limit, text: v.String()}, nil
}

func buildMultipleOf(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	divisor, err := ratValue(v, path)
	if err != nil {
		return nil, err
	}
	if divisor.Sign() <= 0 {
		return nil, fmt.Errorf("%s: must be strictly greater than 0", path)
	}
	return &MultipleOfValidator{divisor: divisor, text: v.String()}, nil
}

func buildItems(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	if v.Type() == fastjson.TypeArray {
		tuple, err := s.schemaArray(node, v, path)
		if err != nil {
			return nil, err
		}
		return &ItemsValidator{tuple: tuple}, nil
	}
	schema, err := s.compileNode(v, path, node)
	if err != nil {
		return nil, err
	}
	return &ItemsValidator{schema: schema}, nil
}

func buildAdditionalItems(s *compilation, node *Node, obj *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	items := obj.Get("items")
	if items == nil || items.Type() != fastjson.TypeArray {
		return nil, nil
	}
	tuple, _ := items.Array()
	switch v.Type() {
	case fastjson.TypeTrue:
		return nil, nil
	case fastjson.TypeFalse:
		return &AdditionalItemsValidator{start: len(tuple)}, nil
	}
	schema, err := s.compileNode(v, path, node)
	if err != nil {
		return nil, err
	}
	return &AdditionalItemsValidator{start: len(tuple), schema: schema}, nil
}

func buildCount(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	limit, err := nonNegativeInt(v, path)
	if err != nil {
		return nil, err
	}
	return &CountValidator{keyword: lastToken(path), limit: limit}, nil
}

func buildUniqueItems(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	switch v.Type() {
	case fastjson.TypeTrue:
		return &UniqueItemsValidator{}, nil
	case fastjson.TypeFalse:
		return nil, nil
	}
	return nil, fmt.Errorf("%s: expected a boolean", path)
}

func buildContains(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	schema, err := s.compileNode(v, path, node)
	if err != nil {
		return nil, err
	}
	return &ContainsValidator{schema: schema}, nil
}

func buildProperties(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	props, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%s: expected an object", path)
	}
	var entries []PropertyEntry
	for _, name := range objectKeys(props) {
		child, err := s.compileNode(props.Get(name), path+"/"+escapeToken(name), node)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PropertyEntry{Name: name, Schema: child})
	}
	return NewPropertiesValidator(path, node, entries), nil
}

func buildRequired(_ *compilation, _ *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	names, err := stringArray(v, path)
	if err != nil {
		return nil, err
	}
	return NewRequiredValidator(path, names), nil
}

func buildPatternProperties(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	props, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%s: expected an object", path)
	}
	var entries []patternEntry
	for _, pattern := range objectKeys(props) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		child, err := s.compileNode(props.Get(pattern), path+"/"+escapeToken(pattern), node)
		if err != nil {
			return nil, err
		}
		entries = append(entries, patternEntry{re: re, schema: child})
	}
	return &PatternPropertiesValidator{entries: entries}, nil
}

func buildAdditionalProperties(s *compilation, node *Node, obj *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	apv := &AdditionalPropertiesValidator{declared: make(map[string]struct{})}
	if props := obj.Get("properties"); props != nil && props.Type() == fastjson.TypeObject {
		names, _ := props.Object()
		for _, name := range objectKeys(names) {
			apv.declared[name] = struct{}{}
		}
	}
	if pp := obj.Get("patternProperties"); pp != nil && pp.Type() == fastjson.TypeObject {
		patterns, _ := pp.Object()
		for _, pattern := range objectKeys(patterns) {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			apv.patterns = append(apv.patterns, re)
		}
	}

	switch v.Type() {
	case fastjson.TypeTrue:
		return nil, nil
	case fastjson.TypeFalse:
		return apv, nil
	}
	schema, err := s.compileNode(v, path, node)
	if err != nil {
		return nil, err
	}
	apv.schema = schema
	return apv, nil
}

func buildPropertyNames(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	schema, err := s.compileNode(v, path, node)
	if err != nil {
		return nil, err
	}
	return &PropertyNamesValidator{schema: schema}, nil
}

func buildDependencies(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	deps, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%s: expected an object", path)
	}
	dv := &DependenciesValidator{}
	for _, name := range objectKeys(deps) {
		dep := deps.Get(name)
		depPath := path + "/" + escapeToken(name)
		if dep.Type() == fastjson.TypeArray {
			required, err := stringArray(dep, depPath)
			if err != nil {
				return nil, err
			}
			dv.entries = append(dv.entries, dependency{name: name, required: required})
			continue
		}
		schema, err := s.compileNode(dep, depPath, node)
		if err != nil {
			return nil, err
		}
		dv.entries = append(dv.entries, dependency{name: name, schema: schema})
	}
	return dv, nil
}

func buildAllOf(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	schemas, err := s.schemaArray(node, v, path)
	if err != nil {
		return nil, err
	}
	return &AllOfValidator{path: path, schemas: schemas}, nil
}

func buildAnyOf(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	branches, err := s.schemaArray(node, v, path)
	if err != nil {
		return nil, err
	}
	return &AnyOfValidator{path: path, branches: branches}, nil
}

func buildOneOf(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	branches, err := s.schemaArray(node, v, path)
	if err != nil {
		return nil, err
	}
	return &OneOfValidator{path: path, branches: branches}, nil
}

func buildNot(s *compilation, node *Node, _ *fastjson.Object, v *fastjson.Value, path string) (Validator, error) {
	branch, err := s.compileNode(v, path, node)
	if err != nil {
		return nil, err
	}
	return &NotValidator{path: path, branch: branch}, nil
}
