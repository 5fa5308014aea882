package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func TestFunctionRewriter_insertAtTailReturnsCombinedIndex(t *testing.T) {
	m := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "log", Kind: wasm.ImportKindFunc},
		},
		FunctionSection: []wasm.Index{0},
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{{Opcode: wasm.OpcodeEnd}}},
		},
	}
	r := NewFunctionRewriter(m)
	combined, err := r.Insert(FunctionDescriptor{}, NewFunction{
		TypeIndex: 0,
		Body:      []wasm.Instruction{{Opcode: wasm.OpcodeEnd}},
	})
	require.NoError(t, err)
	// One imported function occupies combined index 0, the pre-existing
	// internal function occupies 1, so the new tail function is 2.
	require.Equal(t, wasm.Index(2), combined)
	require.Len(t, m.CodeSection, 2)
}

func TestFunctionRewriter_deleteRejectsImportedIndex(t *testing.T) {
	m := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "log", Kind: wasm.ImportKindFunc},
		},
	}
	zero := wasm.Index(0)
	r := NewFunctionRewriter(m)
	err := r.Delete(FunctionDescriptor{Index: &zero})
	require.ErrorIs(t, err, wasm.ErrImportNotEditable)
}

// Scenario 4 groundwork: three internal functions a, b, c with body of a
// calling b; inserting a new function at the tail gives it combined index
// 3 and leaves a's Call to b unchanged, since only indices at or past the
// insertion point shift.
func TestFunctionRewriter_insertAtTailLeavesEarlierCalls(t *testing.T) {
	m := &wasm.Module{
		FunctionSection: []wasm.Index{0, 0, 0},
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{ // a: calls b (index 1)
				{Opcode: wasm.OpcodeCall, Args: wasm.IndexArgs{Index: 1}},
				{Opcode: wasm.OpcodeEnd},
			}},
			{Body: []wasm.Instruction{{Opcode: wasm.OpcodeEnd}}}, // b
			{Body: []wasm.Instruction{{Opcode: wasm.OpcodeEnd}}}, // c
		},
	}
	r := NewFunctionRewriter(m)
	combined, err := r.Insert(FunctionDescriptor{}, NewFunction{
		TypeIndex: 0,
		Body:      []wasm.Instruction{{Opcode: wasm.OpcodeEnd}},
	})
	require.NoError(t, err)
	require.Equal(t, wasm.Index(3), combined)

	callArgs, ok := m.CodeSection[0].Body[0].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(1), callArgs.Index) // b's index unchanged, insert was at tail
}
