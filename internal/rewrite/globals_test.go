package rewrite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmrw/wasmrw/internal/wasm"
)

func globalGetBody(indices ...wasm.Index) []wasm.Instruction {
	body := make([]wasm.Instruction, 0, len(indices)+1)
	for _, idx := range indices {
		body = append(body, wasm.Instruction{Opcode: wasm.OpcodeGlobalGet, Args: wasm.IndexArgs{Index: idx}})
	}
	return append(body, wasm.Instruction{Opcode: wasm.OpcodeEnd})
}

func threeGlobals() []*wasm.Global {
	i32 := wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: false}
	return []*wasm.Global{
		{Type: i32, Init: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x00}}},
		{Type: i32, Init: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x01}}},
		{Type: i32, Init: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x02}}},
	}
}

// Scenario 3: deleting global index 2 from a module with three globals
// and a body referencing index 2 directly is rejected.
func TestGlobalRewriter_deleteRejectsWhenReferenced(t *testing.T) {
	m := &wasm.Module{
		GlobalSection: threeGlobals(),
		CodeSection: []*wasm.Code{
			{Body: globalGetBody(0, 2, 3)},
		},
	}
	two := wasm.Index(2)
	r := NewGlobalRewriter(m)
	err := r.Delete(GlobalDescriptor{Index: &two})
	require.ErrorIs(t, err, wasm.ErrIndexInUse)
	require.Len(t, m.GlobalSection, 3)
}

func TestGlobalRewriter_deleteDecrementsWhenNotReferenced(t *testing.T) {
	m := &wasm.Module{
		GlobalSection: threeGlobals(),
		CodeSection: []*wasm.Code{
			{Body: globalGetBody(0, 3)},
		},
	}
	two := wasm.Index(2)
	r := NewGlobalRewriter(m)
	require.NoError(t, r.Delete(GlobalDescriptor{Index: &two}))
	require.Len(t, m.GlobalSection, 2)

	second, ok := m.CodeSection[0].Body[1].Args.(wasm.IndexArgs)
	require.True(t, ok)
	require.Equal(t, wasm.Index(2), second.Index)
}

func TestGlobalRewriter_insertAppliesAtTailWhenZeroDescriptor(t *testing.T) {
	i32 := wasm.GlobalType{ValType: wasm.ValueTypeI32, Mutable: true}
	m := &wasm.Module{GlobalSection: threeGlobals()}
	r := NewGlobalRewriter(m)
	err := r.Insert(GlobalDescriptor{}, &wasm.Global{Type: i32, Init: wasm.ConstantExpression{Opcode: wasm.OpcodeI32Const, Data: []byte{0x09}}})
	require.NoError(t, err)
	require.Len(t, m.GlobalSection, 4)
}
