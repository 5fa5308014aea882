package binary

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/api"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestDecodeDataSegment_active(t *testing.T) {
	// prefix 0, offset expr i32.const 0 end, init size 2, bytes 0x01 0x02
	in := []byte{0x00, 0x41, 0x00, 0x0b, 0x02, 0x01, 0x02}
	r := bytes.NewReader(in)
	seg, err := decodeDataSegment(r, api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Equal(t, wasm.DataSegmentModeActive, seg.Mode)
	require.Equal(t, []byte{0x01, 0x02}, seg.Init)
	require.Equal(t, 0, r.Len())
}

func TestDecodeDataSegment_passive(t *testing.T) {
	in := []byte{0x01, 0x01, 0xff}
	seg, err := decodeDataSegment(bytes.NewReader(in), api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Equal(t, wasm.DataSegmentModePassive, seg.Mode)
	require.Equal(t, []byte{0xff}, seg.Init)
}

func TestDecodeDataSegment_passive_featureDisabled(t *testing.T) {
	in := []byte{0x01, 0x00}
	_, err := decodeDataSegment(bytes.NewReader(in), api.CoreFeaturesV1)
	require.Error(t, err)
}

func TestDecodeDataSegment_activeWithMemory_nonZeroIndex(t *testing.T) {
	// prefix 2, memory index 1 (invalid, must be zero)
	in := []byte{0x02, 0x01, 0x41, 0x00, 0x0b, 0x00}
	_, err := decodeDataSegment(bytes.NewReader(in), api.CoreFeaturesV2)
	require.Error(t, err)
}

func TestDecodeDataSegment_invalidPrefix(t *testing.T) {
	_, err := decodeDataSegment(bytes.NewReader([]byte{0x03}), api.CoreFeaturesV2)
	require.Error(t, err)
}

func TestEncodeDecodeDataSegment_roundTrip(t *testing.T) {
	segs := []*wasm.DataSegment{
		{Mode: wasm.DataSegmentModeActive, OffsetExpression: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x00}}, Init: []byte{1, 2, 3}},
		{Mode: wasm.DataSegmentModePassive, Init: []byte{4, 5}},
	}
	encoded := encodeDataSection(segs)
	decoded, err := decodeDataSection(bytes.NewReader(encoded), api.CoreFeaturesV2)
	require.NoError(t, err)
	require.Equal(t, segs, decoded)
}
