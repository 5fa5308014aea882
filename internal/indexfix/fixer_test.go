package indexfix

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func callBody(idx wasm.Index) []wasm.Instruction {
	return []wasm.Instruction{
		{Opcode: wasm.OpcodeCall, Args: wasm.IndexArgs{Index: idx}},
		{Opcode: wasm.OpcodeEnd},
	}
}

// Scenario 2: inserting an import function at combined index 0 shifts a
// self-call's immediate from 0 to 1.
func TestFixFunctionIndex_insertImportShiftsSelfCall(t *testing.T) {
	m := &wasm.Module{
		CodeSection: []*wasm.Code{
			{Body: callBody(0)},
		},
	}

	err := FixFunctionIndex(m, 0, Insert)
	require.NoError(t, err)

	args, ok := m.CodeSection[0].Body[0].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(1), args.Index)
}

func globalGetBody(indices ...wasm.Index) []wasm.Instruction {
	body := make([]wasm.Instruction, 0, len(indices)+1)
	for _, idx := range indices {
		body = append(body, wasm.Instruction{Opcode: wasm.OpcodeGlobalGet, Args: wasm.IndexArgs{Index: idx}})
	}
	body = append(body, wasm.Instruction{Opcode: wasm.OpcodeEnd})
	return body
}

// Scenario 3: deleting global index 2 from a body that references it
// directly is rejected.
func TestFixGlobalIndex_deleteRejectsWhenReferenced(t *testing.T) {
	m := &wasm.Module{
		CodeSection: []*wasm.Code{
			{Body: globalGetBody(0, 2, 3)},
		},
	}

	err := FixGlobalIndex(m, 2, Delete)
	require.ErrorIs(t, err, wasm.ErrIndexInUse)

	// Rejected deletion must not have mutated the body.
	args, ok := m.CodeSection[0].Body[1].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(2), args.Index)
}

// Scenario 3 variant: deleting global index 2 from a body that never
// references it directly decrements indices greater than 2.
func TestFixGlobalIndex_deleteDecrementsWhenNotReferenced(t *testing.T) {
	m := &wasm.Module{
		CodeSection: []*wasm.Code{
			{Body: globalGetBody(0, 3)},
		},
	}

	err := FixGlobalIndex(m, 2, Delete)
	require.NoError(t, err)

	first, ok := m.CodeSection[0].Body[0].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(0), first.Index)

	second, ok := m.CodeSection[0].Body[1].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(2), second.Index)
}

func TestFixGlobalIndex_exportDecrementsOnDelete(t *testing.T) {
	m := &wasm.Module{
		ExportSection: []*wasm.Export{
			{Name: "g", Kind: wasm.ExportKindGlobal, Index: 3},
		},
	}

	require.NoError(t, FixGlobalIndex(m, 2, Delete))
	require.Equal(t, wasm.Index(2), m.ExportSection[0].Index)
}

func TestFixGlobalIndex_exportIncrementsOnInsert(t *testing.T) {
	m := &wasm.Module{
		ExportSection: []*wasm.Export{
			{Name: "g", Kind: wasm.ExportKindGlobal, Index: 1},
		},
	}

	require.NoError(t, FixGlobalIndex(m, 1, Insert))
	require.Equal(t, wasm.Index(2), m.ExportSection[0].Index)
}

func TestFixFunctionIndex_deleteRejectsWhenCalled(t *testing.T) {
	m := &wasm.Module{
		CodeSection: []*wasm.Code{
			{Body: callBody(1)},
		},
	}
	err := FixFunctionIndex(m, 1, Delete)
	require.ErrorIs(t, err, wasm.ErrIndexInUse)
}

func TestFixFunctionIndex_startSectionShifted(t *testing.T) {
	start := wasm.Index(2)
	m := &wasm.Module{StartSection: &start}

	require.NoError(t, FixFunctionIndex(m, 1, Insert))
	require.Equal(t, wasm.Index(3), *m.StartSection)
}

func TestFixFunctionIndex_elementSegmentShifted(t *testing.T) {
	m := &wasm.Module{
		ElementSection: []*wasm.ElementSegment{
			{Init: []wasm.Index{0, 1, 2}},
		},
	}

	require.NoError(t, FixFunctionIndex(m, 1, Insert))
	require.Equal(t, []wasm.Index{0, 2, 3}, m.ElementSection[0].Init)
}

func TestFixTypeIndex_callIndirectShifted(t *testing.T) {
	m := &wasm.Module{
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{
				{Opcode: wasm.OpcodeCallIndirect, Args: wasm.TableArg{X: 2, Y: 0}},
				{Opcode: wasm.OpcodeEnd},
			}},
		},
	}

	require.NoError(t, FixTypeIndex(m, 1, Insert))
	args, ok := m.CodeSection[0].Body[0].Args.(wasm.TableArg)
	require.True(t, ok)
	require.Equal(t, wasm.Index(3), args.X)
	require.Equal(t, wasm.Index(0), args.Y)
}

func TestFixTypeIndex_deleteRejectsWhenUsedByFunctionSection(t *testing.T) {
	m := &wasm.Module{FunctionSection: []wasm.Index{0, 1}}
	err := FixTypeIndex(m, 1, Delete)
	require.ErrorIs(t, err, wasm.ErrIndexInUse)
}

func TestWidenTableMax_createsTableWhenAbsent(t *testing.T) {
	m := &wasm.Module{}
	WidenTableMax(m, 4)
	require.Len(t, m.TableSection, 1)
	require.Equal(t, uint32(4), m.TableSection[0].Limits.Min)
	require.Equal(t, uint32(4), *m.TableSection[0].Limits.Max)
}

func TestWidenTableMax_widensExistingMax(t *testing.T) {
	max := uint32(3)
	m := &wasm.Module{TableSection: []*wasm.TableType{
		{ElemType: wasm.ElemTypeFuncref, Limits: wasm.Limits{Min: 3, Max: &max}},
	}}

	WidenTableMax(m, 5)
	require.Equal(t, uint32(5), *m.TableSection[0].Limits.Max)
}

func TestWidenMemoryMax_growsByWholePages(t *testing.T) {
	max := uint32(1)
	m := &wasm.Module{MemorySection: []*wasm.MemoryType{
		{Limits: wasm.Limits{Min: 1, Max: &max}},
	}}

	// 1 page = 65536 bytes; writing to end offset 65540 overflows by 4
	// bytes, which must grow max by a whole page.
	WidenMemoryMax(m, 65540)
	require.Equal(t, uint32(2), *m.MemorySection[0].Limits.Max)
}

func TestWidenMemoryMax_noopWhenWithinCapacity(t *testing.T) {
	max := uint32(2)
	m := &wasm.Module{MemorySection: []*wasm.MemoryType{
		{Limits: wasm.Limits{Min: 1, Max: &max}},
	}}

	WidenMemoryMax(m, 65536)
	require.Equal(t, uint32(2), *m.MemorySection[0].Limits.Max)
}
