package jsonschema

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/grafana/regexp"
)

// descend validates a child value of the current instance. Recursion into a child
// value is not a new combinator branch, so branch mode is suspended for the call.
func descend(vc *Context, schema *Node, value, root any, at string) *MessageSet {
	restore := vc.suspendBranch()
	defer restore()
	return schema.Validate(vc, value, root, at)
}

func single(m Message) *MessageSet {
	errs := NewMessageSet()
	errs.Add(m)
	return errs
}

// TypeValidator implements "type".
type TypeValidator struct {
	types []string
}

func (v *TypeValidator) Keyword() string { return "type" }

func (v *TypeValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	found := typeOf(node)
	for _, t := range v.types {
		if t == found || (t == TypeNumber && found == TypeInteger) {
			return NewMessageSet()
		}
	}
	return single(newMessage(v.Keyword(), at, map[string]string{
		"found":    found,
		"expected": strings.Join(v.types, ", "),
	}))
}

// EnumValidator implements "enum".
type EnumValidator struct {
	values []any
	text   string
}

func (v *EnumValidator) Keyword() string { return "enum" }

func (v *EnumValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	for _, candidate := range v.values {
		if equalJSON(candidate, node) {
			return NewMessageSet()
		}
	}
	return single(newMessage(v.Keyword(), at, map[string]string{"expected": v.text}))
}

// ConstValidator implements "const".
type ConstValidator struct {
	value any
	text  string
}

func (v *ConstValidator) Keyword() string { return "const" }

func (v *ConstValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	if equalJSON(v.value, node) {
		return NewMessageSet()
	}
	return single(newMessage(v.Keyword(), at, map[string]string{"expected": v.text}))
}

// LengthValidator implements "minLength" and "maxLength". Length counts code points.
type LengthValidator struct {
	keyword string
	limit   int
}

func (v *LengthValidator) Keyword() string { return v.keyword }

func (v *LengthValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	s, ok := node.(string)
	if !ok {
		return NewMessageSet()
	}
	n := utf8.RuneCountInString(s)
	if (v.keyword == "minLength" && n < v.limit) || (v.keyword == "maxLength" && n > v.limit) {
		return single(newMessage(v.keyword, at, map[string]string{"limit": strconv.Itoa(v.limit)}))
	}
	return NewMessageSet()
}

// PatternValidator implements "pattern". Patterns are unanchored.
type PatternValidator struct {
	re *regexp.Regexp
}

func (v *PatternValidator) Keyword() string { return "pattern" }

func (v *PatternValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	s, ok := node.(string)
	if !ok || v.re.MatchString(s) {
		return NewMessageSet()
	}
	return single(newMessage(v.Keyword(), at, map[string]string{"pattern": v.re.String()}))
}

// FormatValidator implements "format" for formats the compiler knows.
type FormatValidator struct {
	format string
	check  FormatChecker
}

func (v *FormatValidator) Keyword() string { return "format" }

func (v *FormatValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	s, ok := node.(string)
	if !ok || v.check(s) {
		return NewMessageSet()
	}
	return single(newMessage(v.Keyword(), at, map[string]string{"format": v.format}))
}

// LimitValidator implements "minimum", "maximum", "exclusiveMinimum" and
// "exclusiveMaximum".
type LimitValidator struct {
	keyword string
	limit   *big.Rat
	text    string
}

func (v *LimitValidator) Keyword() string { return v.keyword }

func (v *LimitValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	n, ok := toRat(node)
	if !ok {
		return NewMessageSet()
	}
	c := n.Cmp(v.limit)
	var failed bool
	switch v.keyword {
	case "minimum":
		failed = c < 0
	case "exclusiveMinimum":
		failed = c <= 0
	case "maximum":
		failed = c > 0
	case "exclusiveMaximum":
		failed = c >= 0
	}
	if !failed {
		return NewMessageSet()
	}
	return single(newMessage(v.keyword, at, map[string]string{"limit": v.text}))
}

// MultipleOfValidator implements "multipleOf".
type MultipleOfValidator struct {
	divisor *big.Rat
	text    string
}

func (v *MultipleOfValidator) Keyword() string { return "multipleOf" }

func (v *MultipleOfValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	n, ok := toRat(node)
	if !ok {
		return NewMessageSet()
	}
	if new(big.Rat).Quo(n, v.divisor).IsInt() {
		return NewMessageSet()
	}
	return single(newMessage(v.Keyword(), at, map[string]string{"divisor": v.text}))
}

// ItemsValidator implements "items" in both its single-schema and tuple forms.
type ItemsValidator struct {
	schema *Node
	tuple  []*Node
}

func (v *ItemsValidator) Keyword() string { return "items" }

func (v *ItemsValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	arr, ok := node.([]any)
	if !ok {
		return errs
	}
	for i, item := range arr {
		schema := v.schema
		if v.tuple != nil {
			if i >= len(v.tuple) {
				break
			}
			schema = v.tuple[i]
		}
		errs.AddAll(descend(vc, schema, item, root, at+"["+strconv.Itoa(i)+"]"))
	}
	return errs
}

// AdditionalItemsValidator implements "additionalItems" for tuple-form items.
// A nil schema means additional items are forbidden.
type AdditionalItemsValidator struct {
	start  int
	schema *Node
}

func (v *AdditionalItemsValidator) Keyword() string { return "additionalItems" }

func (v *AdditionalItemsValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	arr, ok := node.([]any)
	if !ok {
		return errs
	}
	for i := v.start; i < len(arr); i++ {
		if v.schema == nil {
			errs.Add(newMessage(v.Keyword(), at, map[string]string{"index": strconv.Itoa(i)}))
			continue
		}
		errs.AddAll(descend(vc, v.schema, arr[i], root, at+"["+strconv.Itoa(i)+"]"))
	}
	return errs
}

// CountValidator implements "minItems", "maxItems", "minProperties" and "maxProperties".
type CountValidator struct {
	keyword string
	limit   int
}

func (v *CountValidator) Keyword() string { return v.keyword }

func (v *CountValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	var n int
	switch v.keyword {
	case "minItems", "maxItems":
		arr, ok := node.([]any)
		if !ok {
			return NewMessageSet()
		}
		n = len(arr)
	default:
		obj, ok := node.(map[string]any)
		if !ok {
			return NewMessageSet()
		}
		n = len(obj)
	}
	lower := strings.HasPrefix(v.keyword, "min")
	if (lower && n < v.limit) || (!lower && n > v.limit) {
		return single(newMessage(v.keyword, at, map[string]string{"limit": strconv.Itoa(v.limit)}))
	}
	return NewMessageSet()
}

// UniqueItemsValidator implements "uniqueItems": true.
type UniqueItemsValidator struct{}

func (v *UniqueItemsValidator) Keyword() string { return "uniqueItems" }

func (v *UniqueItemsValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	arr, ok := node.([]any)
	if !ok {
		return NewMessageSet()
	}
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			if equalJSON(arr[i], arr[j]) {
				return single(newMessage(v.Keyword(), at, nil))
			}
		}
	}
	return NewMessageSet()
}

// ContainsValidator implements "contains".
type ContainsValidator struct {
	schema *Node
}

func (v *ContainsValidator) Keyword() string { return "contains" }

func (v *ContainsValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	arr, ok := node.([]any)
	if !ok {
		return NewMessageSet()
	}
	for i, item := range arr {
		if descend(vc, v.schema, item, root, at+"["+strconv.Itoa(i)+"]").Empty() {
			return NewMessageSet()
		}
	}
	return single(newMessage(v.Keyword(), at, nil))
}

type patternEntry struct {
	re     *regexp.Regexp
	schema *Node
}

// PatternPropertiesValidator implements "patternProperties".
type PatternPropertiesValidator struct {
	entries []patternEntry
}

func (v *PatternPropertiesValidator) Keyword() string { return "patternProperties" }

func (v *PatternPropertiesValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	obj, ok := node.(map[string]any)
	if !ok {
		return errs
	}
	for _, name := range sortedKeys(obj) {
		for _, e := range v.entries {
			if e.re.MatchString(name) {
				errs.AddAll(descend(vc, e.schema, obj[name], root, at+"."+name))
			}
		}
	}
	return errs
}

// AdditionalPropertiesValidator implements "additionalProperties". Members named
// by the sibling "properties" or matched by "patternProperties" are not additional.
// A nil schema means additional properties are forbidden.
type AdditionalPropertiesValidator struct {
	declared map[string]struct{}
	patterns []*regexp.Regexp
	schema   *Node
}

func (v *AdditionalPropertiesValidator) Keyword() string { return "additionalProperties" }

func (v *AdditionalPropertiesValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	obj, ok := node.(map[string]any)
	if !ok {
		return errs
	}
	for _, name := range sortedKeys(obj) {
		if v.isDeclared(name) {
			continue
		}
		if v.schema == nil {
			errs.Add(newMessage(v.Keyword(), at, map[string]string{"property": name}))
			continue
		}
		errs.AddAll(descend(vc, v.schema, obj[name], root, at+"."+name))
	}
	return errs
}

func (v *AdditionalPropertiesValidator) isDeclared(name string) bool {
	if _, ok := v.declared[name]; ok {
		return true
	}
	for _, re := range v.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// PropertyNamesValidator implements "propertyNames".
type PropertyNamesValidator struct {
	schema *Node
}

func (v *PropertyNamesValidator) Keyword() string { return "propertyNames" }

func (v *PropertyNamesValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	obj, ok := node.(map[string]any)
	if !ok {
		return errs
	}
	for _, name := range sortedKeys(obj) {
		if !descend(vc, v.schema, name, root, at+"."+name).Empty() {
			errs.Add(newMessage(v.Keyword(), at, map[string]string{"property": name}))
		}
	}
	return errs
}

type dependency struct {
	name     string
	required []string
	schema   *Node
}

// DependenciesValidator implements "dependencies" in its property-list and schema forms.
type DependenciesValidator struct {
	entries []dependency
}

func (v *DependenciesValidator) Keyword() string { return "dependencies" }

func (v *DependenciesValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	obj, ok := node.(map[string]any)
	if !ok {
		return errs
	}
	for _, dep := range v.entries {
		if _, present := obj[dep.name]; !present {
			continue
		}
		for _, name := range dep.required {
			if _, present := obj[name]; !present {
				errs.Add(newMessage(v.Keyword(), at, map[string]string{"property": dep.name, "dependency": name}))
			}
		}
		if dep.schema != nil {
			// same instance, not a child value
			errs.AddAll(dep.schema.Validate(vc, node, root, at))
		}
	}
	return errs
}

// RefValidator implements "$ref". The target is resolved at compile time and the
// instance is validated in place.
type RefValidator struct {
	ref    string
	target *Node
}

func (v *RefValidator) Keyword() string { return "$ref" }

func (v *RefValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	return v.target.Validate(vc, node, root, at)
}

// FalseValidator is the whole of the boolean schema false.
type FalseValidator struct{}

func (v *FalseValidator) Keyword() string { return "false" }

func (v *FalseValidator) Validate(_ *Context, _, _ any, at string) *MessageSet {
	return single(newMessage(v.Keyword(), at, nil))
}
