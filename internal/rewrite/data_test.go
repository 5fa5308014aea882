package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestDataRewriter_insertAppendsAndSyncsCount(t *testing.T) {
	count := uint32(1)
	m := &wasm.Module{
		DataSection:      []*wasm.DataSegment{{Mode: wasm.DataSegmentModeActive}},
		DataCountSection: &count,
	}
	r := NewDataRewriter(m)
	require.NoError(t, r.Insert(DataDescriptor{}, &wasm.DataSegment{Mode: wasm.DataSegmentModePassive, Init: []byte{1}}))
	require.Len(t, m.DataSection, 2)
	require.Equal(t, uint32(2), *m.DataCountSection)
}

func TestDataRewriter_selectByMode(t *testing.T) {
	passive := wasm.DataSegmentModePassive
	m := &wasm.Module{
		DataSection: []*wasm.DataSegment{
			{Mode: wasm.DataSegmentModeActive},
			{Mode: wasm.DataSegmentModePassive, Init: []byte{9}},
		},
	}
	r := NewDataRewriter(m)
	got := r.Select(DataDescriptor{Mode: &passive})
	require.Len(t, got, 1)
	require.Equal(t, []byte{9}, got[0].Init)
}

func TestTableEntryRewriter_appendAndDelete(t *testing.T) {
	m := &wasm.Module{
		ElementSection: []*wasm.ElementSegment{
			{Init: []wasm.Index{1, 2, 3}},
		},
	}
	r := NewTableEntryRewriter(m)

	slot, err := r.Append(0, 4)
	require.NoError(t, err)
	require.Equal(t, 3, slot)
	require.Equal(t, []wasm.Index{1, 2, 3, 4}, m.ElementSection[0].Init)

	seg, s := 0, 1
	require.NoError(t, r.Delete(TableEntryDescriptor{Segment: &seg, Slot: &s}))
	require.Equal(t, []wasm.Index{1, 3, 4}, m.ElementSection[0].Init)
}
