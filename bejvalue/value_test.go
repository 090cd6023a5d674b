package bejvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextRoundTrip(t *testing.T) {
	src := `{"a":1,"b":"hello","c":[1,2,3],"d":null,"e":true,"nested":{"x":-4.5}}`

	v, err := ParseText([]byte(src))
	require.NoError(t, err)

	a, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, float64(1), a.Number())

	b, ok := v.Get("b")
	require.True(t, ok)
	assert.Equal(t, "hello", b.String())

	c, ok := v.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, c.Len())
	assert.Equal(t, float64(3), c.Array()[2].Number())

	d, ok := v.Get("d")
	require.True(t, ok)
	assert.True(t, d.IsNull())

	nested, ok := v.Get("nested")
	require.True(t, ok)
	x, ok := nested.Get("x")
	require.True(t, ok)
	assert.Equal(t, -4.5, x.Number())
}

func TestParseTextUnicodeEscape(t *testing.T) {
	v, err := ParseText([]byte("\"caf\\u00e9\""))
	require.NoError(t, err)
	assert.Equal(t, "café", v.String())
}

func TestWriteTextRoundTrip(t *testing.T) {
	original := NewObject()
	original.Set("a", Number(1))
	original.Set("b", String("quoted \"value\""))
	original.Set("c", Array([]Value{Number(1), Number(2)}))

	text := WriteText(original)

	parsed, err := ParseText([]byte(text))
	require.NoError(t, err)
	assert.True(t, Equal(original, parsed))
}

func TestEqualOrderInsensitiveObjects(t *testing.T) {
	a := NewObject()
	a.Set("x", Number(1))
	a.Set("y", Number(2))

	b := NewObject()
	b.Set("y", Number(2))
	b.Set("x", Number(1))

	assert.True(t, Equal(a, b))
}

func TestEqualOrderSensitiveArrays(t *testing.T) {
	a := Array([]Value{Number(1), Number(2)})
	b := Array([]Value{Number(2), Number(1)})
	assert.False(t, Equal(a, b))
}
