package jsonschema

import (
	"encoding/json"
	"math/big"
	"sort"
	"strings"
)

// JSON type names as used by the "type" keyword.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeString  = "string"
)

// typeOf returns the JSON type of a normalized instance value. Numbers without a
// fractional part report "integer".
func typeOf(v any) string {
	switch t := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	case string:
		return TypeString
	case json.Number:
		if r, ok := toRat(t); ok {
			if r.IsInt() {
				return TypeInteger
			}
			return TypeNumber
		}
		if isIntegerLiteral(string(t)) {
			return TypeInteger
		}
		return TypeNumber
	}
	return ""
}

// isIntegerLiteral decides from the text of a JSON number whether its value is
// integral. It serves numbers whose exponent is too large for big.Rat.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	mantissa, exponent := s, "0"
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exponent = s[:i], strings.TrimPrefix(s[i+1:], "+")
	}
	exp, ok := new(big.Int).SetString(exponent, 10)
	if !ok {
		return false
	}

	digits := mantissa
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		frac := strings.TrimRight(mantissa[i+1:], "0")
		digits = mantissa[:i] + frac
		exp.Sub(exp, big.NewInt(int64(len(frac))))
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return true
	}
	trimmed := strings.TrimRight(digits, "0")
	exp.Add(exp, big.NewInt(int64(len(digits)-len(trimmed))))
	return exp.Sign() >= 0
}

// toRat converts a normalized number to an exact rational.
func toRat(v any) (*big.Rat, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return nil, false
	}
	return new(big.Rat).SetString(string(n))
}

// equalJSON compares two normalized values by JSON semantics: numbers compare by
// value, objects ignore member order.
func equalJSON(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case json.Number:
		rx, ok := toRat(x)
		if !ok {
			return false
		}
		ry, ok := toRat(b)
		return ok && rx.Cmp(ry) == 0
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalJSON(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !equalJSON(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// formatValue renders a normalized value as compact JSON for message arguments.
// Object members are sorted so the text is stable.
func formatValue(v any) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := sortedKeys(t)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			writeValue(b, t[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	default:
		out, _ := json.Marshal(t)
		b.Write(out)
	}
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
