package semantics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/leb128"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func i32ConstExpr(v int32) wasm.ConstantExpression {
	return wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: leb128.EncodeInt32(v)}
}

// Scenario 4: three internal functions a, b, c; body of a is Call b;
// installing a hook at new index n rewriting every Call b to Call n
// leaves a's body calling n, and b's own code untouched.
func TestInstallHook(t *testing.T) {
	m := &wasm.Module{
		FunctionSection: []wasm.Index{0, 0, 0},
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{ // a
				{Opcode: wasm.OpcodeCall, Args: wasm.IndexArgs{Index: 1}},
				{Opcode: wasm.OpcodeEnd},
			}},
			{Body: []wasm.Instruction{{Opcode: wasm.OpcodeEnd}}}, // b
			{Body: []wasm.Instruction{{Opcode: wasm.OpcodeEnd}}}, // c
		},
	}
	f := New(m)
	hook, err := f.InsertFunction(0, nil, []wasm.Instruction{
		{Opcode: wasm.OpcodeCall, Args: wasm.IndexArgs{Index: 1}}, // hook wraps the original call to b
		{Opcode: wasm.OpcodeEnd},
	})
	require.NoError(t, err)
	require.Equal(t, wasm.Index(3), hook)

	f.InstallHook(1, hook)

	aCall, ok := m.CodeSection[0].Body[0].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, hook, aCall.Index)

	require.Len(t, m.CodeSection[1].Body, 1) // b untouched
}

// Scenario 5: a data segment at offset 100 with 10 bytes; a patch of 5
// bytes at offset 103 merges into it, producing a 10-byte segment at
// offset 100 with bytes [3..8) replaced.
func TestPatchLinearMemory_mergesOverlap(t *testing.T) {
	original := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	m := &wasm.Module{
		DataSection: []*wasm.DataSegment{
			{Mode: wasm.DataSegmentModeActive, OffsetExpression: i32ConstExpr(100), Init: append([]byte(nil), original...)},
		},
	}
	f := New(m)
	require.NoError(t, f.PatchLinearMemory(103, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee}))

	require.Len(t, m.DataSection, 1)
	seg := m.DataSection[0]
	require.Len(t, seg.Init, 10)
	expected := []byte{0, 1, 2, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 8, 9}
	require.Equal(t, expected, seg.Init)

	off, ok := constI32Offset(seg.OffsetExpression)
	require.True(t, ok)
	require.Equal(t, uint32(100), off)
}

// A patch that extends past the end of an existing segment resizes it
// rather than truncating the patch.
func TestPatchLinearMemory_extendsPastSegmentEnd(t *testing.T) {
	m := &wasm.Module{
		DataSection: []*wasm.DataSegment{
			{Mode: wasm.DataSegmentModeActive, OffsetExpression: i32ConstExpr(100), Init: []byte{1, 2, 3, 4, 5}},
		},
	}
	f := New(m)
	require.NoError(t, f.PatchLinearMemory(103, []byte{0xaa, 0xbb, 0xcc, 0xdd}))

	seg := m.DataSection[0]
	require.Len(t, seg.Init, 7) // [100,105) union [103,107) = [100,107)
	require.Equal(t, []byte{1, 2, 3, 0xaa, 0xbb, 0xcc, 0xdd}, seg.Init)
}

func TestPatchLinearMemory_noOverlapAppendsNewSegment(t *testing.T) {
	m := &wasm.Module{
		DataSection: []*wasm.DataSegment{
			{Mode: wasm.DataSegmentModeActive, OffsetExpression: i32ConstExpr(0), Init: []byte{1, 2, 3}},
		},
	}
	f := New(m)
	require.NoError(t, f.PatchLinearMemory(1000, []byte{9, 9}))
	require.Len(t, m.DataSection, 2)
}

func TestInsertFunctionImport_returnsOrdinalNotRawImportIndex(t *testing.T) {
	m := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "mem", Kind: wasm.ImportKindMemory, DescMemory: &wasm.MemoryType{}},
		},
	}
	f := New(m)
	idx, err := f.InsertFunctionImport("env", "log", 0)
	require.NoError(t, err)
	// Raw import_sec index would be 1 (appended after the memory import);
	// the function-ordinal index must be 0, since this is the first
	// function-kind import.
	require.Equal(t, wasm.Index(0), idx)
}

func TestAppendIndirectTableEntry_widensTableMax(t *testing.T) {
	max := uint32(1)
	m := &wasm.Module{
		TableSection: []*wasm.TableType{
			{ElemType: wasm.ElemTypeFuncref, Limits: wasm.Limits{Min: 1, Max: &max}},
		},
		ElementSection: []*wasm.ElementSegment{
			{OffsetExpression: i32ConstExpr(0), Init: []wasm.Index{7}},
		},
	}
	f := New(m)
	slot, err := f.AppendIndirectTableEntry(42)
	require.NoError(t, err)
	require.Equal(t, 1, slot)
	require.Equal(t, []wasm.Index{7, 42}, m.ElementSection[0].Init)
	require.Equal(t, uint32(2), *m.TableSection[0].Limits.Max)
}
