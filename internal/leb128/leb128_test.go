package leb128

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeInt32(t *testing.T) {
	for _, c := range []struct {
		input    int32
		expected []byte
	}{
		{input: -165675008, expected: []byte{0x80, 0x80, 0x80, 0xb1, 0x7f}},
		{input: -624485, expected: []byte{0x9b, 0xf1, 0x59}},
		{input: -16256, expected: []byte{0x80, 0x81, 0x7f}},
		{input: -4, expected: []byte{0x7c}},
		{input: -1, expected: []byte{0x7f}},
		{input: 0, expected: []byte{0x00}},
		{input: 1, expected: []byte{0x01}},
		{input: 4, expected: []byte{0x04}},
		{input: 16256, expected: []byte{0x80, 0xff, 0x0}},
		{input: 624485, expected: []byte{0xe5, 0x8e, 0x26}},
		{input: 165675008, expected: []byte{0x80, 0x80, 0x80, 0xcf, 0x0}},
		{input: int32(math.MaxInt32), expected: []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
	} {
		require.Equal(t, c.expected, EncodeInt32(c.input))
		decoded, n, err := DecodeInt32(bytes.NewReader(c.expected))
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
		require.Equal(t, uint32(len(c.expected)), n)
	}
}

func TestEncodeDecodeInt64(t *testing.T) {
	for _, c := range []struct {
		input    int64
		expected []byte
	}{
		{input: -math.MaxInt32, expected: []byte{0x81, 0x80, 0x80, 0x80, 0x78}},
		{input: -165675008, expected: []byte{0x80, 0x80, 0x80, 0xb1, 0x7f}},
		{input: -1, expected: []byte{0x7f}},
		{input: 0, expected: []byte{0x00}},
		{input: math.MaxInt32, expected: []byte{0xff, 0xff, 0xff, 0xff, 0x7}},
		{input: math.MaxInt64, expected: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x0}},
	} {
		require.Equal(t, c.expected, EncodeInt64(c.input))
		decoded, _, err := DecodeInt64(bytes.NewReader(c.expected))
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
	}
}

func TestEncodeDecodeUint32(t *testing.T) {
	for _, c := range []struct {
		input    uint32
		expected []byte
	}{
		{input: 0, expected: []byte{0x00}},
		{input: 1, expected: []byte{0x01}},
		{input: 16256, expected: []byte{0x80, 0x7f}},
		{input: 624485, expected: []byte{0xe5, 0x8e, 0x26}},
		{input: 165675008, expected: []byte{0x80, 0x80, 0x80, 0x4f}},
		{input: uint32(math.MaxUint32), expected: []byte{0xff, 0xff, 0xff, 0xff, 0xf}},
	} {
		require.Equal(t, c.expected, EncodeUint32(c.input))
		decoded, _, err := DecodeUint32(bytes.NewReader(c.expected))
		require.NoError(t, err)
		require.Equal(t, c.input, decoded)
	}
}

// TestDecodeUint32_boundary covers the boundary behaviors named in spec.md
// section 8: minimal-length zero padded to five bytes, six-byte overlong
// encodings, and overflow of the final group.
func TestDecodeUint32_boundary(t *testing.T) {
	t.Run("zero padded to 5 bytes", func(t *testing.T) {
		v, n, err := DecodeUint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x00}))
		require.NoError(t, err)
		require.Equal(t, uint32(0), v)
		require.Equal(t, uint32(5), n)
	})
	t.Run("6 bytes is too long", func(t *testing.T) {
		_, _, err := DecodeUint32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
		require.ErrorIs(t, err, ErrIntTooLong)
	})
	t.Run("value overflows 32 bits", func(t *testing.T) {
		_, _, err := DecodeUint32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x10}))
		require.ErrorIs(t, err, ErrIntTooLarge)
	})
}

func TestDecodeUint32_unexpectedEnd(t *testing.T) {
	_, _, err := DecodeUint32(bytes.NewReader([]byte{0x80, 0x80}))
	require.Error(t, err)
}

func TestEncodedLen(t *testing.T) {
	require.Equal(t, 1, EncodedLen32(0))
	require.Equal(t, 1, EncodedLen32(127))
	require.Equal(t, 2, EncodedLen32(128))
	require.Equal(t, len(EncodeUint64(math.MaxUint64)), EncodedLen64(math.MaxUint64))
}
