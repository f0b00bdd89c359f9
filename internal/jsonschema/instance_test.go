package jsonschema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{"nil", nil, nil},
		{"int", 42, json.Number("42")},
		{"int64", int64(-7), json.Number("-7")},
		{"uint8", uint8(200), json.Number("200")},
		{"float", 1.5, json.Number("1.5")},
		{"float32", float32(0.5), json.Number("0.5")},
		{"typed slice", []string{"a", "b"}, []any{"a", "b"}},
		{"typed map", map[string]int{"a": 1}, map[string]any{"a": json.Number("1")}},
		{"yaml map", map[any]any{"a": true, 1: "x"}, map[string]any{"a": true, "1": "x"}},
		{
			"nested",
			map[string]any{"list": []any{1, map[string]any{"ok": false}}},
			map[string]any{"list": []any{json.Number("1"), map[string]any{"ok": false}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Unsupported(t *testing.T) {
	type tag string

	for name, v := range map[string]any{
		"NaN":          math.NaN(),
		"Inf":          math.Inf(1),
		"channel":      make(chan int),
		"function":     func() {},
		"struct":       struct{ A int }{A: 1},
		"int map":      map[int]string{1: "a"},
		"bad number":   json.Number("1e"),
		"nested NaN":   map[string]any{"a": []any{math.NaN()}},
		"complex":      complex(1, 2),
		"pointer":      new(int),
		"named string": []tag{"x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(v)
			assert.ErrorIs(t, err, ErrUnsupportedValue)
		})
	}
}

func TestNormalize_ErrorNamesLocation(t *testing.T) {
	_, err := Normalize(map[string]any{"a": []any{1, math.Inf(-1)}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `".a[1]"`)
}

func TestDecodeJSON_KeepsIntegerPrecision(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"id":12345678901234567890}`))

	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), v.(map[string]any)["id"])
}

func TestDecodeYAML(t *testing.T) {
	v, err := DecodeYAML([]byte("name: web\nreplicas: 3\nports:\n  - 80\n  - 443\n"))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":     "web",
		"replicas": json.Number("3"),
		"ports":    []any{json.Number("80"), json.Number("443")},
	}, v)
}
