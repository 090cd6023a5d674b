package bej

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNNINTRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 0xFF, 0x100, 0xFFFF, 0x10000, 1 << 32, ^uint64(0)}

	for _, v := range values {
		buf := &Buffer{}
		buf.AppendNNINT(v)

		r := NewReader(buf.Bytes)
		got, err := r.ReadNNINT()
		require.NoError(t, err)
		assert.Equal(t, v, got, "value %d round-trips", v)
		assert.Zero(t, r.BytesLeft(), "no trailing bytes for value %d", v)
	}
}

func TestNNINTZeroIsLengthOneNotZero(t *testing.T) {
	buf := &Buffer{}
	buf.AppendNNINT(0)
	assert.Equal(t, []byte{1, 0}, buf.Bytes)
}

func TestNNINTMinimalWidth(t *testing.T) {
	cases := []struct {
		v    uint64
		want int // expected length byte
	}{
		{0, 1},
		{0xFF, 1},
		{0x100, 2},
		{0xFFFF, 2},
		{0x10000, 3},
		{^uint64(0), 8},
	}

	for _, c := range cases {
		buf := &Buffer{}
		buf.AppendNNINT(c.v)
		assert.Equal(t, byte(c.want), buf.Bytes[0], "value %#x", c.v)
	}
}

func TestNNINTRejectsOversizeLength(t *testing.T) {
	r := NewReader([]byte{9, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	_, err := r.ReadNNINT()
	assert.ErrorIs(t, err, ErrNNINTTooWide)
}

func TestNNINTRejectsZeroLength(t *testing.T) {
	r := NewReader([]byte{0})
	_, err := r.ReadNNINT()
	assert.ErrorIs(t, err, ErrNNINTZeroLength)
}

func TestNNINTShortRead(t *testing.T) {
	r := NewReader([]byte{4, 1, 2})
	_, err := r.ReadNNINT()
	assert.ErrorIs(t, err, ErrFramingShortRead)
}

func TestSignedMinimalWidth(t *testing.T) {
	cases := []struct {
		v    int64
		want int
	}{
		{0, 1},
		{1, 1},
		{-1, 1},
		{127, 1},
		{128, 2},
		{-128, 1},
		{-129, 2},
		{1 << 40, 6},
		{-(1 << 40), 6},
	}

	for _, c := range cases {
		buf := &Buffer{}
		buf.AppendSignedMinimal(c.v)

		r := NewReader(buf.Bytes)
		width, err := r.ReadNNINT()
		require.NoError(t, err)
		assert.Equal(t, uint64(c.want), width, "value %d", c.v)

		raw, err := r.Read(uint(width))
		require.NoError(t, err)

		var u uint64
		for i, b := range raw {
			u |= uint64(b) << (8 * uint(i))
		}
		shift := 64 - width*8
		got := int64(u<<shift) >> shift
		assert.Equal(t, c.v, got, "round trip for %d", c.v)
	}
}
