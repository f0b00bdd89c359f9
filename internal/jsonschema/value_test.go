package jsonschema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf_Numbers(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"3", TypeInteger},
		{"-3E+2", TypeInteger},
		{"2.0", TypeInteger},
		{"2.50", TypeNumber},
		{"120e-1", TypeInteger},
		{"125e-1", TypeNumber},
		{"1e5000000", TypeInteger},
		{"1.5e5000000", TypeInteger},
		{"-7e5000000", TypeInteger},
		{"1e-5000000", TypeNumber},
		{"0.0e-5000000", TypeInteger},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, typeOf(json.Number(tt.number)))
		})
	}
}

func TestIsIntegerLiteral(t *testing.T) {
	assert.True(t, isIntegerLiteral("100e-2"))
	assert.True(t, isIntegerLiteral("0"))
	assert.False(t, isIntegerLiteral("0.001e2"))
	assert.True(t, isIntegerLiteral("0.001e3"))
	assert.False(t, isIntegerLiteral("1e"))
}

func TestValidate_IntegerWithHugeExponent(t *testing.T) {
	engine := NewEngine(MustCompile(`{"type":"integer"}`))

	msgs, err := engine.ValidateJSON([]byte(`1e5000000`))
	require.NoError(t, err)
	assert.True(t, msgs.Empty(), msgs.String())

	msgs, err = engine.ValidateJSON([]byte(`1e-5000000`))
	require.NoError(t, err)
	assert.Equal(t, 1, msgs.Len())
}
