package binary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestEncodeDecodeElementSegment(t *testing.T) {
	e := &wasm.ElementSegment{
		TableIndex:       0,
		OffsetExpression: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x00}},
		Init:             []wasm.Index{0, 1, 2},
	}
	encoded := encodeElementSegment(e)
	decoded, err := decodeElementSegment(bytes.NewReader(encoded), api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Equal(t, e, decoded)
}

func TestEncodeDecodeElementSection_multiple(t *testing.T) {
	es := []*wasm.ElementSegment{
		{OffsetExpression: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x00}}, Init: []wasm.Index{0}},
		{OffsetExpression: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x01}}, Init: []wasm.Index{1, 2}},
	}
	encoded := encodeElementSection(es)
	decoded, err := decodeElementSection(bytes.NewReader(encoded), api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Equal(t, es, decoded)
}
