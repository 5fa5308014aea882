package binary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestDecodeTableSection_atMostOne(t *testing.T) {
	in := []byte{0x02}
	_, err := decodeTableSection(bytes.NewReader(in))
	require.Error(t, err)
}

func TestEncodeDecodeTableType(t *testing.T) {
	max := uint32(10)
	tt := &wasm.TableType{ElemType: wasm.ElemTypeFuncref, Limits: wasm.Limits{Min: 1, Max: &max}}
	decoded, err := decodeTableType(bytes.NewReader(encodeTableType(tt)))
	require.NoError(t, err)
	require.Equal(t, tt.ElemType, decoded.ElemType)
	require.Equal(t, tt.Limits.Min, decoded.Limits.Min)
	require.Equal(t, *tt.Limits.Max, *decoded.Limits.Max)
}

func TestDecodeTableType_invalidElemType(t *testing.T) {
	_, err := decodeTableType(bytes.NewReader([]byte{0x7f, 0x00, 0x01}))
	require.ErrorIs(t, err, wasm.ErrBadElemType)
}
