package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

// Scenario 2: inserting an import function at index 0 into an
// empty-import module with one internal function calling itself shifts
// the self-call's immediate to 1 and the new import lands at import
// index 0.
func TestImportRewriter_insertFunctionShiftsSelfCall(t *testing.T) {
	m := &wasm.Module{
		CodeSection: []*wasm.Code{
			{Body: []wasm.Instruction{
				{Opcode: wasm.OpcodeCall, Args: wasm.IndexArgs{Index: 0}},
				{Opcode: wasm.OpcodeEnd},
			}},
		},
	}

	r := NewImportRewriter(m)
	err := r.Insert(ImportDescriptor{}, &wasm.Import{Module: "env", Name: "log", Kind: wasm.ImportKindFunc, DescFunc: 0})
	require.NoError(t, err)
	require.Len(t, m.ImportSection, 1)
	require.Equal(t, "log", m.ImportSection[0].Name)

	args, ok := m.CodeSection[0].Body[0].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(1), args.Index)
}

func TestImportRewriter_selectByKind(t *testing.T) {
	kind := wasm.ImportKindFunc
	m := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "a", Kind: wasm.ImportKindFunc},
			{Module: "env", Name: "mem", Kind: wasm.ImportKindMemory},
		},
	}
	r := NewImportRewriter(m)
	got := r.Select(ImportDescriptor{Kind: &kind})
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].Name)
}

func TestImportRewriter_insertAmbiguousSelector(t *testing.T) {
	m := &wasm.Module{
		ImportSection: []*wasm.Import{
			{Module: "env", Name: "a", Kind: wasm.ImportKindFunc},
			{Module: "env", Name: "b", Kind: wasm.ImportKindFunc},
		},
	}
	kind := wasm.ImportKindFunc
	r := NewImportRewriter(m)
	err := r.Insert(ImportDescriptor{Kind: &kind}, &wasm.Import{Module: "env", Name: "c", Kind: wasm.ImportKindFunc})
	require.ErrorIs(t, err, wasm.ErrAmbiguousSelector)
}
